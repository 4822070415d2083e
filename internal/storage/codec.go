package storage

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Records are stored as bson documents with fields in declaration order.
// There is no version tag: adding or renaming a field changes the layout.

func encodeTask(t Task) ([]byte, error) {
	t.normalize()
	data, err := bson.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode task: %w", err)
	}
	return data, nil
}

func decodeTask(data []byte) (Task, error) {
	var t Task
	if err := bson.Unmarshal(data, &t); err != nil {
		return Task{}, err
	}
	t.normalize()
	return t, nil
}

func encodeAccount(a Account) ([]byte, error) {
	data, err := bson.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode account: %w", err)
	}
	return data, nil
}

func decodeAccount(data []byte) (Account, error) {
	var a Account
	if err := bson.Unmarshal(data, &a); err != nil {
		return Account{}, err
	}
	return a, nil
}

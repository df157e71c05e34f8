// Package memory holds map-backed implementations of the repository
// interfaces. Each store serialises access with a mutex so conditional
// updates behave like their single-document MongoDB counterparts. Values
// are deep-copied through BSON on the way in and out.
package memory

import "go.mongodb.org/mongo-driver/bson"

func clone[T any](in T) (T, error) {
	var out T
	raw, err := bson.Marshal(in)
	if err != nil {
		return out, err
	}
	err = bson.Unmarshal(raw, &out)
	return out, err
}

// patch applies top-level $set and $unset semantics to a document.
func patch[T any](in T, set bson.M, unset []string) (T, error) {
	var out T
	raw, err := bson.Marshal(in)
	if err != nil {
		return out, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return out, err
	}
	for k, v := range set {
		doc[k] = v
	}
	for _, k := range unset {
		delete(doc, k)
	}
	raw, err = bson.Marshal(doc)
	if err != nil {
		return out, err
	}
	err = bson.Unmarshal(raw, &out)
	return out, err
}

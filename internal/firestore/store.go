package firestore

import (
	"context"
	"fmt"

	"github.com/welling-fm/fireinspect/internal/building"
	"github.com/welling-fm/fireinspect/internal/errors"
)

// BuildingStore reads and writes building records in one app's buildings
// collection.
type BuildingStore struct {
	client     *Client
	collection string
}

// NewBuildingStore returns a store over apps/{appID}/buildings.
func NewBuildingStore(client *Client, appID string) *BuildingStore {
	return &BuildingStore{client: client, collection: BuildingsCollection(appID)}
}

// Collection returns the collection path relative to the documents root
func (s *BuildingStore) Collection() string {
	return s.collection
}

// ListRecords returns every building document as a record.
func (s *BuildingStore) ListRecords(ctx context.Context) ([]building.Record, error) {
	docs, err := s.client.ListDocuments(ctx, s.collection)
	if err != nil {
		return nil, err
	}

	records := make([]building.Record, 0, len(docs))
	for _, doc := range docs {
		fields, err := DecodeFields(doc.Fields)
		if err != nil {
			return nil, errors.New(fmt.Errorf("decode %s: %w", doc.Name, err)).
				Component("firestore").
				Context("document", doc.Name).
				Build()
		}
		records = append(records, building.NewRecord(doc.Name, fields))
	}
	return records, nil
}

// WriteRecord replaces the stored document with the record's fields.
func (s *BuildingStore) WriteRecord(ctx context.Context, rec building.Record) error {
	fields, err := EncodeFields(rec.Fields)
	if err != nil {
		return errors.New(fmt.Errorf("encode %s: %w", rec.Path, err)).
			Component("firestore").
			Context("document", rec.Path).
			Build()
	}
	name := rec.Path
	if name == "" {
		name = s.client.DocumentName(s.collection + "/" + rec.ID)
	}
	_, err = s.client.PatchDocument(ctx, Document{Name: name, Fields: fields})
	return err
}

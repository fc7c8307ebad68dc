// Package firestore is a small REST client for the Cloud Firestore v1 API. It
// lists collections and replaces whole documents, which is all the updater
// needs.
package firestore

import (
	"path"
	"strings"
)

// Document is a Firestore document on the wire. Name is the full resource
// name, projects/{p}/databases/(default)/documents/{path}.
type Document struct {
	Name       string           `json:"name,omitempty"`
	Fields     map[string]Value `json:"fields"`
	CreateTime string           `json:"createTime,omitempty"`
	UpdateTime string           `json:"updateTime,omitempty"`
}

// ID returns the last segment of the document name
func (d Document) ID() string {
	return path.Base(d.Name)
}

type listResponse struct {
	Documents     []Document `json:"documents"`
	NextPageToken string     `json:"nextPageToken"`
}

// DocumentsRoot is the resource prefix of every document in a project's
// default database.
func DocumentsRoot(project string) string {
	return "projects/" + project + "/databases/(default)/documents"
}

// BuildingsCollection is the collection holding an app's buildings
func BuildingsCollection(appID string) string {
	return "apps/" + appID + "/buildings"
}

// trimSlashes normalizes a collection path
func trimSlashes(s string) string {
	return strings.Trim(s, "/")
}

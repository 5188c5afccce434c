package models

import "time"

// ExportVersion is written into every export envelope.
const ExportVersion = "1.0"

// ExportEnvelope is the document produced by the export endpoint and accepted
// by the import endpoint.
type ExportEnvelope struct {
	ExportDate    time.Time     `json:"exportDate"`
	Version       string        `json:"version"`
	Apps          []WebApp      `json:"apps"`
	Categories    []Category    `json:"categories"`
	Subcategories []Subcategory `json:"subcategories"`
}

// ImportEnvelope is the document accepted by the import endpoint. Records
// decode into the create payloads, so omitted fields get the same defaults as
// a create.
type ImportEnvelope struct {
	Version       string                `json:"version"`
	Apps          []ImportedApp         `json:"apps"`
	Categories    []ImportedCategory    `json:"categories"`
	Subcategories []ImportedSubcategory `json:"subcategories"`
}

type ImportedApp struct {
	NewWebApp
	SortOrder *int `json:"sortOrder"`
}

// ImportedCategory keeps the exported ID so subcategories can be remapped.
type ImportedCategory struct {
	ID int `json:"id"`
	NewCategory
}

type ImportedSubcategory struct {
	ID int `json:"id"`
	NewSubcategory
}

type ImportCounts struct {
	Categories    int `json:"categories"`
	Subcategories int `json:"subcategories"`
	Apps          int `json:"apps"`
}

// SkippedRecord explains why one record of an import was not stored.
type SkippedRecord struct {
	Entity string `json:"entity"`
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Message  string          `json:"message"`
	Imported ImportCounts    `json:"imported"`
	Skipped  []SkippedRecord `json:"skipped"`
}

// Package gormstore implements accesscore.RecordStore on a
// Postgres-backed GORM database. It owns the user and business tables
// and translates GORM's not-found condition into the engine's
// ErrRecordNotFound sentinel.
package gormstore

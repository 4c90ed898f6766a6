// Package controllers contains the HTTP handlers for the EasyFlows API.
// Handlers are constructor functions that close over their dependencies
// and return an http.HandlerFunc.
package controllers

import (
	"errors"

	"gorm.io/gorm"

	pkgerrors "github.com/ougajs-sys/easyflows-backend/pkg/errors"
)

// mapNotFound converts a gorm record-not-found error into a typed 404.
// Other errors pass through untouched.
func mapNotFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return err
}

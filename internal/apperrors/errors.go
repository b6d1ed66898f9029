package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrArchivoVacio indicates that an uploaded file carried no bytes.
var ErrArchivoVacio = errors.New("el archivo está vacío")

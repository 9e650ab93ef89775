package v1

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest = "Geçersiz istek"
	msgEmptyBody      = "İstek gövdesi boş"
	msgInvalidJSON    = "Geçersiz JSON"
	msgInvalidType    = "Geçersiz değer tipi"
)

// bindErrorBody returns a client-safe body for a request that could not be
// decoded. Decoder errors expose Go type names and are never passed through.
func bindErrorBody(err error) gin.H {
	if errors.Is(err, io.EOF) {
		return gin.H{"error": msgEmptyBody}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return gin.H{"error": msgInvalidRequest, "details": map[string][]string{"payload": {msgInvalidJSON}}}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return gin.H{"error": msgInvalidRequest, "details": map[string][]string{typeErr.Field: {msgInvalidType}}}
	}

	return gin.H{"error": msgInvalidRequest}
}

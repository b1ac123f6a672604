package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorResponseWireShape(t *testing.T) {
	raw, jsonerr := json.Marshal(BadRequest("Invalid duration"))
	assert.NoError(t, jsonerr)
	// The HTTP status rides on the response line, never in the body
	assert.Equal(t, `{"error":"Invalid duration"}`, string(raw))
}

func TestErrorResponseConstructors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, BadRequest("").StatusCode())
	assert.Equal(t, http.StatusNotFound, NotFound("").StatusCode())
	assert.Equal(t, http.StatusInternalServerError, InternalServerError("").StatusCode())

	notFound := NotFound("No active timer")
	assert.Equal(t, "No active timer", notFound.Error())
	// Empty messages fall back to a generic one
	assert.NotEmpty(t, NotFound("").Error())
}

package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/bookmarks/internal/common"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON object into dst. Unknown fields are ignored and an
// empty body decodes as {}.
func decodeJSON(w http.ResponseWriter, req *http.Request, dst any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)

	dec := json.NewDecoder(req.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return common.NewValidationError(typeErr.Field, typeErr.Field+" has the wrong type")
		}
		return common.NewValidationError("body", "invalid JSON body")
	}
	if dec.More() {
		return common.NewValidationError("body", "invalid JSON body")
	}
	return nil
}

// pathID parses the {id} segment as a positive integer.
func pathID(req *http.Request) (int64, error) {
	id, err := strconv.ParseInt(req.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("id", "id must be a positive integer")
	}
	return id, nil
}

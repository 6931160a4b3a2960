package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/algoritmia-up/portal/internal/adapters/remote"
	"github.com/algoritmia-up/portal/internal/domain/listing"
	"github.com/algoritmia-up/portal/internal/domain/model"
)

const (
	maxJSONBody   = 1 << 20
	maxBannerSize = 8 << 20
)

type listQuery struct {
	search  string
	sort    listing.SortState
	refresh bool
}

// parseListQuery reads ?q=&sort=&dir=&refresh= against a listing schema.
func parseListQuery[T any](r *http.Request, schema *listing.Schema[T]) (listQuery, error) {
	v := r.URL.Query()
	sort, err := schema.Parse(v.Get("sort"), v.Get("dir"))
	if err != nil {
		return listQuery{}, err
	}
	refresh := v.Get("refresh")
	return listQuery{
		search:  v.Get("q"),
		sort:    sort,
		refresh: refresh == "1" || strings.EqualFold(refresh, "true"),
	}, nil
}

func credentials(r *http.Request) remote.Credentials {
	return remote.CookiesFrom(r)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := decodeStrict(r.Body, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err)
	}
	return nil
}

// decodeStrict decodes one JSON value, rejecting fields dst does not declare.
func decodeStrict(body io.Reader, dst any) error {
	dec := json.NewDecoder(io.LimitReader(body, maxJSONBody))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// decodeEvent reads an event form either as JSON or as multipart with a
// "payload" JSON part and an optional "banner" file.
func decodeEvent(w http.ResponseWriter, r *http.Request) (model.EventInput, error) {
	var in model.EventInput
	if !isMultipart(r) {
		err := decodeJSON(r, &in)
		return in, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBannerSize+maxJSONBody)
	if err := r.ParseMultipartForm(maxBannerSize); err != nil {
		return in, fmt.Errorf("%w: invalid multipart body: %v", ErrBadRequest, err)
	}
	if err := decodeStrict(strings.NewReader(r.FormValue("payload")), &in); err != nil {
		return in, fmt.Errorf("%w: invalid payload: %v", ErrBadRequest, err)
	}

	file, header, err := r.FormFile("banner")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, fmt.Errorf("%w: invalid banner: %v", ErrBadRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return in, fmt.Errorf("%w: read banner: %v", ErrBadRequest, err)
	}
	in.Banner = &model.Banner{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return in, nil
}

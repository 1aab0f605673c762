package transport

import (
	"io"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"github.com/Skotchmaster/ambition_store/internal/errs"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// source is a flat bag of named request values. JSON bodies keep their
// native types; form bodies and query strings carry everything as text.
type source interface {
	text(key string) (string, bool, error)
	scalar(key string) (string, bool, error)
	integer(key string) (int64, bool, error)
	boolean(key string) (bool, bool, error)
	list(key string) ([]source, bool, error)
}

// bodySource picks the decoder from the Content-Type header. Anything other
// than a form post is read as JSON; an empty body counts as an empty object.
func bodySource(r *http.Request) (source, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, errs.Malformed("body")
		}
		return formSource(r.PostForm), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, errs.Malformed("body")
		}
		return formSource(r.PostForm), nil
	}

	if r.Body == nil {
		return jsonSource{gjson.Parse("{}")}, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errs.Malformed("body")
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return jsonSource{gjson.Parse("{}")}, nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, errs.Malformed("body")
	}
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return nil, errs.Malformed("body")
	}
	return jsonSource{res}, nil
}

type jsonSource struct {
	res gjson.Result
}

func (s jsonSource) get(key string) (gjson.Result, bool) {
	v := s.res.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return v, false
	}
	return v, true
}

func (s jsonSource) text(key string) (string, bool, error) {
	v, ok := s.get(key)
	if !ok {
		return "", false, nil
	}
	if v.Type != gjson.String {
		return "", true, errs.Malformed(key)
	}
	return v.Str, true, nil
}

func (s jsonSource) scalar(key string) (string, bool, error) {
	v, ok := s.get(key)
	if !ok {
		return "", false, nil
	}
	switch v.Type {
	case gjson.String:
		return v.Str, true, nil
	case gjson.Number:
		return v.Raw, true, nil
	default:
		return "", true, errs.Malformed(key)
	}
}

func (s jsonSource) integer(key string) (int64, bool, error) {
	v, ok := s.get(key)
	if !ok {
		return 0, false, nil
	}
	switch v.Type {
	case gjson.Number:
		if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return n, true, nil
		}
		if v.Num != math.Trunc(v.Num) || math.Abs(v.Num) > math.MaxInt64 {
			return 0, true, errs.Malformed(key)
		}
		return int64(v.Num), true, nil
	case gjson.String:
		n, err := parseInt(v.Str)
		if err != nil {
			return 0, true, errs.Malformed(key)
		}
		return n, true, nil
	default:
		return 0, true, errs.Malformed(key)
	}
}

func (s jsonSource) boolean(key string) (bool, bool, error) {
	v, ok := s.get(key)
	if !ok {
		return false, false, nil
	}
	switch v.Type {
	case gjson.True:
		return true, true, nil
	case gjson.False:
		return false, true, nil
	case gjson.String:
		b, err := parseBool(v.Str)
		if err != nil {
			return false, true, errs.Malformed(key)
		}
		return b, true, nil
	default:
		return false, true, errs.Malformed(key)
	}
}

func (s jsonSource) list(key string) ([]source, bool, error) {
	v, ok := s.get(key)
	if !ok {
		return nil, false, nil
	}
	if v.Type == gjson.String {
		// some clients send the array as an encoded string
		return listFromText(key, v.Str)
	}
	return listFromResult(key, v)
}

func listFromText(key, text string) ([]source, bool, error) {
	if !gjson.Valid(text) {
		return nil, true, errs.Malformed(key)
	}
	return listFromResult(key, gjson.Parse(text))
}

func listFromResult(key string, v gjson.Result) ([]source, bool, error) {
	if !v.IsArray() {
		return nil, true, errs.Malformed(key)
	}
	out := make([]source, 0, len(v.Array()))
	for _, el := range v.Array() {
		if !el.IsObject() {
			return nil, true, errs.Malformed(key)
		}
		out = append(out, jsonSource{el})
	}
	return out, true, nil
}

type formSource url.Values

func (s formSource) get(key string) (string, bool) {
	vals, ok := s[key]
	if !ok || len(vals) == 0 || vals[0] == "" {
		return "", false
	}
	return vals[0], true
}

func (s formSource) text(key string) (string, bool, error) {
	v, ok := s.get(key)
	return v, ok, nil
}

func (s formSource) scalar(key string) (string, bool, error) {
	return s.text(key)
}

func (s formSource) integer(key string) (int64, bool, error) {
	v, ok := s.get(key)
	if !ok {
		return 0, false, nil
	}
	n, err := parseInt(v)
	if err != nil {
		return 0, true, errs.Malformed(key)
	}
	return n, true, nil
}

func (s formSource) boolean(key string) (bool, bool, error) {
	v, ok := s.get(key)
	if !ok {
		return false, false, nil
	}
	b, err := parseBool(v)
	if err != nil {
		return false, true, errs.Malformed(key)
	}
	return b, true, nil
}

func (s formSource) list(key string) ([]source, bool, error) {
	v, ok := s.get(key)
	if !ok {
		return nil, false, nil
	}
	return listFromText(key, v)
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, errs.ErrMalformedValue
}

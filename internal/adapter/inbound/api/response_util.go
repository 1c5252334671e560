package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"userapi/internal/application/common"
	"userapi/internal/domain/errors/domain"
)

// Response status values.
const (
	StatusSuccess = "success"
)

// Pool both encoders and their underlying buffers.
type pooledEncoder struct {
	buf     *bytes.Buffer
	encoder *json.Encoder
}

func (pe *pooledEncoder) reset() {
	pe.buf.Reset()
}

var encoderPool = sync.Pool{
	New: func() interface{} {
		buf := bytes.NewBuffer(make([]byte, 0, 512))
		return &pooledEncoder{
			buf:     buf,
			encoder: json.NewEncoder(buf),
		}
	},
}

// WriteJSON encodes data and writes it with statusCode. Nothing is written when encoding fails.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	if statusCode == 0 {
		statusCode = http.StatusOK
	}

	pe := encoderPool.Get().(*pooledEncoder)
	defer func() {
		pe.reset()
		encoderPool.Put(pe)
	}()

	if err := pe.encoder.Encode(data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_, err := w.Write(pe.buf.Bytes())
	return err
}

type successEnvelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// WriteSuccess writes {"status":"success","data":...}. 204 responses carry no body.
func WriteSuccess(w http.ResponseWriter, statusCode int, data interface{}) error {
	if statusCode == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	return WriteJSON(w, statusCode, successEnvelope{Status: StatusSuccess, Data: data})
}

// DecodeJSONBody decodes the request body into dst, reading at most maxBytes.
// A malformed or oversized body is an operational 400.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return domain.Wrap(err, "Request body too large", http.StatusRequestEntityTooLarge)
		}
		return domain.Wrap(err, common.MsgInvalidPayload, http.StatusBadRequest)
	}
	return nil
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
)

// maxPooledBuffer caps the buffers returned to the pool. A report for a large
// file can grow one well past the usual response size.
const maxPooledBuffer = 1 << 20

// Encoders and their buffers are pooled together.
type pooledEncoder struct {
	buf     *bytes.Buffer
	encoder *json.Encoder
}

var encoderPool = sync.Pool{
	New: func() interface{} {
		buf := bytes.NewBuffer(make([]byte, 0, 4096))
		encoder := json.NewEncoder(buf)
		encoder.SetEscapeHTML(false)
		return &pooledEncoder{buf: buf, encoder: encoder}
	},
}

// WriteJSON encodes data and writes it with statusCode. Nothing is written when
// encoding fails, so the caller can still send an error response.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	if statusCode == 0 {
		statusCode = http.StatusOK
	}

	pe := encoderPool.Get().(*pooledEncoder)
	defer func() {
		if pe.buf.Cap() > maxPooledBuffer {
			return
		}
		pe.buf.Reset()
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

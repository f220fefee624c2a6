package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

type decoder func(body []byte) ([]byte, error)

var decoders = map[string]decoder{
	"br": func(body []byte) ([]byte, error) {
		return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
	},
	"gzip": func(body []byte) ([]byte, error) {
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		return readAndClose(r)
	},
	"zstd": func(body []byte) ([]byte, error) {
		r, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	},
	"deflate": func(body []byte) ([]byte, error) {
		// Servers send both zlib-wrapped and raw deflate under this name.
		if r, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			return readAndClose(r)
		}
		return readAndClose(flate.NewReader(bytes.NewReader(body)))
	},
}

func readAndClose(r io.ReadCloser) ([]byte, error) {
	out, err := io.ReadAll(r)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	return out, err
}

// DecodeChain undoes a Content-Encoding header value, last coding first.
// It reports whether the body changed.
func DecodeChain(contentEncoding string, body []byte) ([]byte, bool, error) {
	if strings.TrimSpace(contentEncoding) == "" {
		return body, false, nil
	}
	codings := strings.Split(contentEncoding, ",")
	changed := false
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))
		switch coding {
		case "", "identity", "compress":
			continue
		}
		decode, ok := decoders[coding]
		if !ok {
			return nil, false, fmt.Errorf("unsupported content-encoding: %q", coding)
		}
		out, err := decode(body)
		if err != nil {
			return nil, false, fmt.Errorf("decode %s: %w", coding, err)
		}
		body = out
		changed = true
	}
	return body, changed, nil
}

package origin

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"approvals-web/rewrite"
)

var log = logging.Logger("approvals-web/origin")

// sniffLen is how much of a body is read to detect its content type.
const sniffLen = 3072

type handler struct {
	store Store
	cfg   Config
}

// NewHandler returns an http.Handler serving the export held by store.
func NewHandler(store Store, cfg Config) http.Handler {
	return &handler{store: store, cfg: cfg}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	// rewrite the path as sent, like the edge function sees request.uri,
	// and decode only the result, like S3 does with the rewritten URI
	rawPath := r.URL.EscapedPath()
	res := rewrite.Rewrite(rawPath)
	decoded, err := url.PathUnescape(res.Path)
	if err != nil {
		log.Debugw("bad rewritten path", "path", rawPath, "rewritten", res.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	key := ObjectKey(decoded)
	log.Debugw("rewrote request", "path", rawPath, "key", key, "rule", res.Rule, "id", res.IDSubstituted)

	obj, err := h.store.Get(r.Context(), key)
	switch {
	case errors.Is(err, ErrNotFound):
		h.serveNotFound(w, r, key)
		return
	case err != nil:
		log.Errorw("fetching object", "key", key, "error", err)
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	h.serveObject(w, r, key, obj, http.StatusOK)
}

func (h *handler) serveNotFound(w http.ResponseWriter, r *http.Request, key string) {
	log.Debugw("object not found", "key", key)

	if h.cfg.NotFoundKey == "" || h.cfg.NotFoundKey == key {
		http.NotFound(w, r)
		return
	}

	obj, err := h.store.Get(r.Context(), h.cfg.NotFoundKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Errorw("fetching not found page", "key", h.cfg.NotFoundKey, "error", err)
		}
		http.NotFound(w, r)
		return
	}

	h.serveObject(w, r, h.cfg.NotFoundKey, obj, http.StatusNotFound)
}

func (h *handler) serveObject(w http.ResponseWriter, r *http.Request, key string, obj *Object, status int) {
	defer obj.Body.Close()

	hdr := w.Header()
	if obj.ETag != "" {
		hdr.Set("ETag", obj.ETag)
	}
	if !obj.LastModified.IsZero() {
		hdr.Set("Last-Modified", obj.LastModified.UTC().Format(http.TimeFormat))
	}
	if status == http.StatusOK && h.cfg.CacheControl != "" {
		hdr.Set("Cache-Control", h.cfg.CacheControl)
	}

	if status == http.StatusOK && obj.ETag != "" && etagMatch(r.Header.Get("If-None-Match"), obj.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	body := io.Reader(obj.Body)
	contentType := obj.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(key))
	}
	if contentType == "" {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(obj.Body, head)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			log.Errorw("reading object", "key", key, "error", err)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
		head = head[:n]
		contentType = mimetype.Detect(head).String()
		body = io.MultiReader(bytes.NewReader(head), obj.Body)
	}
	hdr.Set("Content-Type", contentType)

	if obj.ContentLength > 0 {
		hdr.Set("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}

	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}

	start := time.Now()
	n, err := io.Copy(w, body)
	if err != nil {
		log.Warnw("writing response", "key", key, "written", n, "error", err)
		return
	}
	log.Debugw("served object", "key", key, "status", status, "bytes", n, "duration", time.Since(start))
}

// etagMatch reports whether an If-None-Match header value matches etag.
// The header may list several tags; weak and strong tags compare equal.
func etagMatch(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}
	etag = strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

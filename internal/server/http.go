package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/karupanerura/calc/internal/batch"
	"github.com/karupanerura/calc/internal/defaults"
	"github.com/karupanerura/calc/internal/expression"
	"github.com/karupanerura/calc/internal/types"
)

const (
	evaluationsPath = "/v1/evaluations"
	batchPath       = "/v1/batch"
)

const (
	defaultReloadInterval = 5 * time.Second
	defaultMaxBodyBytes   = 1 << 20
)

// Config configures the evaluation API.
type Config struct {
	// Loader loads the batch served on /v1/batch. Nil disables the endpoint.
	Loader func() (*batch.Batch, error)

	// ReloadInterval is how often Loader is called again. Defaults to 5s.
	ReloadInterval time.Duration

	// MaxLength rejects longer expressions with 400 when positive.
	MaxLength int

	// MaxBodyBytes caps request bodies. Defaults to 1MiB.
	MaxBodyBytes int64
}

type evaluationRequest struct {
	Expression string             `json:"expression"`
	Bindings   map[string]float64 `json:"bindings"`
	Constants  string             `json:"constants"`
}

type evaluation struct {
	Name       string             `json:"name"`
	Expression string             `json:"expression"`
	Tree       string             `json:"tree,omitempty"`
	Bindings   map[string]float64 `json:"bindings,omitempty"`
	Constants  string             `json:"constants,omitempty"`
	Variables  []string           `json:"variables,omitempty"`
	State      string             `json:"state"`
	Result     any                `json:"result,omitempty"`
	Error      any                `json:"error,omitempty"`
	CreateTime time.Time          `json:"createTime"`
}

type httpHandler struct {
	batch        atomic.Value
	hasBatch     bool
	maxLength    int
	maxBodyBytes int64
	idBase      uint64
	evaluations sync.Map
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch path := r.URL.Path; {
	case path == evaluationsPath:
		switch r.Method {
		case http.MethodGet:
			h.listEvaluations(w, r)
		case http.MethodPost:
			h.createEvaluation(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}

	case strings.HasPrefix(path, evaluationsPath+"/"):
		id := strings.TrimPrefix(path, evaluationsPath+"/")
		if id == "" || strings.Contains(id, "/") {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.getEvaluation(w, r, id)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}

	case path == batchPath:
		if !h.hasBatch {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.runBatch(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}

	default:
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

func (h *httpHandler) createEvaluation(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req evaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("failed to decode request body: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if req.Expression == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := expression.CheckLength(req.Expression, h.maxLength); err != nil {
		resJSON(w, http.StatusBadRequest, map[string]any{"error": types.ExceptionOf(err)})
		return
	}
	for name := range req.Bindings {
		if !expression.IsIdentifier(name) {
			err := &types.Error{Tag: types.KeyErrorTag, Err: fmt.Errorf("invalid variable name: %q", name)}
			resJSON(w, http.StatusBadRequest, map[string]any{"error": types.ExceptionOf(err)})
			return
		}
	}
	preset, err := defaults.LookupPreset(req.Constants)
	if err != nil {
		log.Printf("failed to lookup constants: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	valuation := preset.ExtendMap(req.Bindings)

	id := fmt.Sprintf("%012x", atomic.AddUint64(&h.idBase, 1))
	ev := &evaluation{
		Name:       evaluationsPath + "/" + id,
		Expression: req.Expression,
		Bindings:   req.Bindings,
		Constants:  req.Constants,
		Variables:  valuation.Keys(),
		CreateTime: time.Now().UTC(),
	}
	h.evaluate(ev, valuation)
	h.evaluations.Store(id, ev)
	resJSON(w, http.StatusOK, ev)
}

func (h *httpHandler) evaluate(ev *evaluation, valuation *types.Valuation) {
	expr, err := expression.ParseExpr(ev.Expression)
	if err != nil {
		ev.State = "FAILED"
		ev.Error = types.ExceptionOf(err)
		return
	}
	ev.Tree = expr.Root.String()

	ret, err := expr.Evaluate(valuation)
	if err != nil {
		ev.State = "FAILED"
		ev.Error = types.ExceptionOf(err)
		return
	}
	ev.State = "SUCCEEDED"
	ev.Result = types.JSONNumber(ret)
}

func (h *httpHandler) listEvaluations(w http.ResponseWriter, r *http.Request) {
	results := []*evaluation{}
	h.evaluations.Range(func(key, value any) bool {
		results = append(results, value.(*evaluation))
		return true
	})
	sort.Slice(results, func(i, j int) bool {
		if results[i].CreateTime.Equal(results[j].CreateTime) {
			return results[i].Name < results[j].Name
		}
		return results[i].CreateTime.Before(results[j].CreateTime)
	})

	resJSON(w, http.StatusOK, map[string][]*evaluation{"evaluations": results})
}

func (h *httpHandler) getEvaluation(w http.ResponseWriter, r *http.Request, id string) {
	ret, ok := h.evaluations.Load(id)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	resJSON(w, http.StatusOK, ret.(*evaluation))
}

func (h *httpHandler) runBatch(w http.ResponseWriter, r *http.Request) {
	results, err := h.batch.Load().(*batch.Batch).Run(r.Context())
	res := map[string]any{"results": results}
	if err != nil {
		log.Printf("failed to run batch: %v", err)
		res["error"] = types.ExceptionOf(err)
	}
	resJSON(w, http.StatusOK, res)
}

// NewHTTPHandler returns the evaluation API. When cfg.Loader is not nil the
// batch it returns is served on /v1/batch and reloaded until ctx is done.
func NewHTTPHandler(ctx context.Context, cfg Config) (http.Handler, error) {
	h := &httpHandler{
		maxLength:    cfg.MaxLength,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.Loader == nil {
		return h, nil
	}

	b, err := cfg.Loader()
	if err != nil {
		return nil, err
	}
	h.batch.Store(b)
	h.hasBatch = true

	interval := cfg.ReloadInterval
	if interval <= 0 {
		interval = defaultReloadInterval
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				b, err := cfg.Loader()
				if err != nil {
					log.Printf("failed to reload batch: %v", err)
					continue
				}
				h.batch.Store(b)
			}
		}
	}()
	return h, nil
}

func resJSON(w http.ResponseWriter, status int, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)+1))
	w.WriteHeader(status)

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/loykin/folderedit/internal/folder"
	"github.com/loykin/folderedit/internal/metrics"
	"github.com/loykin/folderedit/internal/store"
)

// Router provides embeddable HTTP handlers for the folder service.
// Endpoints:
//
//	GET    {basePath}/status
//	GET    {basePath}/folders
//	POST   {basePath}/folders              body: {"name": "<encoded>"}
//	GET    {basePath}/folders/:id
//	PUT    {basePath}/folders/:id          body: {"name": "<encoded>"}
//	DELETE {basePath}/folders/:id
//	POST   {basePath}/folders/:id/items    body: {"id": "<optional>"}
//	GET    /metrics
//
// PUT and DELETE answer with the wire form of folder.Result:
// 200 on success, 422 when the store rejected the change, 500 when it failed
// without a reason.
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	store    store.Store
	basePath string
	limiter  *RateLimiter
	logger   *slog.Logger
}

// NewRouter constructs a Router over st.
func NewRouter(st store.Store, basePath string) *Router {
	return &Router{store: st, basePath: sanitizeBase(basePath), logger: slog.Default()}
}

// WithRateLimit enables per-client limiting. rps <= 0 disables it.
func (r *Router) WithRateLimit(rps float64, burst int) *Router {
	if rps > 0 {
		r.limiter = NewRateLimiter(rps, burst)
	} else {
		r.limiter = nil
	}
	return r
}

// WithLogger sets the logger for request failures.
func (r *Router) WithLogger(l *slog.Logger) *Router {
	if l != nil {
		r.logger = l
	}
	return r
}

// BasePath returns the sanitized mount point.
func (r *Router) BasePath() string { return r.basePath }

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	if r.limiter != nil {
		g.Use(r.limiter.Gin())
	}
	g.GET("/metrics", gin.WrapH(metrics.Handler()))
	group := g.Group(r.basePath)
	group.GET("/status", r.handleStatus)
	group.GET("/folders", r.handleList)
	group.POST("/folders", r.handleCreate)
	group.GET("/folders/:id", r.handleGet)
	group.PUT("/folders/:id", r.handleSave)
	group.DELETE("/folders/:id", r.handleDelete)
	group.POST("/folders/:id/items", r.handleAddItem)
	return g
}

// NewServer wraps h in an http.Server with conservative timeouts.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

type nameReq struct {
	Name string `json:"name"`
}

type itemReq struct {
	ID string `json:"id"`
}

func (r *Router) handleStatus(c *gin.Context) {
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleList(c *gin.Context) {
	fs, err := r.store.List(c.Request.Context())
	if err != nil {
		r.logger.Error("list folders", "error", err)
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: "list failed"})
		return
	}
	if fs == nil {
		fs = []folder.Folder{}
	}
	writeJSON(c, http.StatusOK, fs)
}

func (r *Router) handleCreate(c *gin.Context) {
	var req nameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "name required"})
		return
	}
	f, err := r.store.Create(c.Request.Context(), req.Name)
	if err != nil {
		r.logger.Error("create folder", "error", err)
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: "create failed"})
		return
	}
	writeJSON(c, http.StatusCreated, f)
}

func (r *Router) handleGet(c *gin.Context) {
	id := c.Param("id")
	if !isSafeID(id) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid id"})
		return
	}
	f, err := r.store.Get(c.Request.Context(), id)
	if errors.Is(err, folder.ErrNotFound) {
		writeJSON(c, http.StatusNotFound, errorResp{Error: store.MsgNotFound})
		return
	}
	if err != nil {
		r.logger.Error("get folder", "id", id, "error", err)
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: "get failed"})
		return
	}
	writeJSON(c, http.StatusOK, f)
}

func (r *Router) handleSave(c *gin.Context) {
	id := c.Param("id")
	if !isSafeID(id) {
		writeResult(c, http.StatusBadRequest, folder.FailureMessage("invalid id"))
		return
	}
	var req nameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeResult(c, http.StatusBadRequest, folder.FailureMessage("invalid JSON: "+err.Error()))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeResult(c, http.StatusBadRequest, folder.FailureMessage("name required"))
		return
	}
	res := r.store.Save(c.Request.Context(), folder.Folder{ID: id, Name: req.Name})
	writeResult(c, resultStatus(res), res)
}

func (r *Router) handleDelete(c *gin.Context) {
	id := c.Param("id")
	if !isSafeID(id) {
		writeResult(c, http.StatusBadRequest, folder.FailureMessage("invalid id"))
		return
	}
	res := r.store.Delete(c.Request.Context(), id)
	writeResult(c, resultStatus(res), res)
}

func (r *Router) handleAddItem(c *gin.Context) {
	id := c.Param("id")
	if !isSafeID(id) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid id"})
		return
	}
	var req itemReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
			return
		}
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	} else if !isSafeID(req.ID) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid item id"})
		return
	}
	err := r.store.AddItem(c.Request.Context(), req.ID, id)
	if errors.Is(err, folder.ErrNotFound) {
		writeJSON(c, http.StatusNotFound, errorResp{Error: store.MsgNotFound})
		return
	}
	if err != nil {
		r.logger.Error("add item", "folder_id", id, "error", err)
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: "add item failed"})
		return
	}
	writeJSON(c, http.StatusCreated, itemReq{ID: req.ID})
}

func resultStatus(res folder.Result) int {
	switch res.Outcome() {
	case folder.Succeeded:
		return http.StatusOK
	case folder.Failed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeResult(c *gin.Context, code int, res folder.Result) {
	writeJSON(c, code, res.ToWire())
}

// Package api exposes HTTP handlers for the sharing service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/healthshare/internal/auth"
	"example.com/healthshare/internal/domain"
	"example.com/healthshare/internal/export"
	"example.com/healthshare/internal/identity"
	"example.com/healthshare/internal/persistence"
	"example.com/healthshare/internal/policy"
)

// Handler coordinates HTTP requests with the policy engine and stores.
type Handler struct {
	resolver *policy.Resolver
	exporter *export.Exporter
	profiles domain.ProfileStore
	settings domain.SettingsStore
	records  domain.RecordStore
	identity identity.Provider
}

// NewHandler builds a Handler.
func NewHandler(resolver *policy.Resolver, exporter *export.Exporter, profiles domain.ProfileStore, settings domain.SettingsStore, records domain.RecordStore, idp identity.Provider) *Handler {
	return &Handler{
		resolver: resolver,
		exporter: exporter,
		profiles: profiles,
		settings: settings,
		records:  records,
		identity: idp,
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/groups/", h.groups)
	mux.HandleFunc("/v1/profiles/", h.profileByID)
	mux.HandleFunc("/v1/records", h.handleRecords)
	mux.HandleFunc("/v1/export", h.exportArchive)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// groups dispatches /v1/groups/{group}/{action}.
func (h *Handler) groups(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/groups/")
	groupID, action, ok := strings.Cut(rest, "/")
	if !ok || groupID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing group id")
		return
	}

	switch action {
	case "shared":
		h.sharedView(w, r, groupID)
	case "totals":
		h.selfTotals(w, r, groupID)
	case "settings":
		h.groupSettings(w, r, groupID)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown group resource")
	}
}

func (h *Handler) sharedView(w http.ResponseWriter, r *http.Request, groupID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeHealthRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope health:read required")
		return
	}

	views, err := h.resolver.ResolveShared(r.Context(), groupID, domain.RoleSharedPeer)
	var partial *policy.PartialFailure
	if err != nil && !errors.As(err, &partial) {
		writeResolutionError(w, err)
		return
	}

	resp := SharedViewResponse{
		GroupID:  groupID,
		Owners:   make([]OwnerViewResponse, 0, len(views)),
		Failures: toFailureViews(partial),
	}
	for _, view := range views {
		resp.Owners = append(resp.Owners, toOwnerView(view))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) selfTotals(w http.ResponseWriter, r *http.Request, groupID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeHealthRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope health:read required")
		return
	}

	var window domain.TimeRange
	if raw := r.URL.Query().Get("window_hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "window_hours must be a positive integer")
			return
		}
		end := time.Now().UTC()
		window = domain.TimeRange{Start: end.Add(-time.Duration(parsed) * time.Hour), End: end}
	}

	totals, err := h.resolver.ResolveSelfTotals(r.Context(), groupID, window)
	var partial *policy.PartialFailure
	if err != nil && !errors.As(err, &partial) {
		writeResolutionError(w, err)
		return
	}

	resp := SelfTotalsResponse{
		GroupID:  groupID,
		Owners:   make([]OwnerTotalsResponse, 0, len(totals)),
		Failures: toFailureViews(partial),
	}
	for _, t := range totals {
		item := OwnerTotalsResponse{
			OwnerID:     t.OwnerID,
			DisplayName: t.DisplayName,
			Totals:      make(map[string]float64, len(t.Totals)),
		}
		for recordType, sum := range t.Totals {
			item.Totals[string(recordType)] = sum
		}
		resp.Owners = append(resp.Owners, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// groupSettings reads or replaces the calling user's sharing settings for
// the group.
func (h *Handler) groupSettings(w http.ResponseWriter, r *http.Request, groupID string) {
	userID, ok := h.identity.CurrentUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	claims, _ := auth.FromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		if !claims.HasScope(auth.ScopeHealthRead) {
			writeError(w, http.StatusForbidden, "forbidden", "scope health:read required")
			return
		}
		stored, err := h.settings.Settings(r.Context(), userID, groupID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if stored == nil {
			defaults := domain.DefaultSettings(userID, groupID)
			stored = &defaults
		}
		writeJSON(w, http.StatusOK, toSettingsView(*stored))
	case http.MethodPut:
		if !claims.HasScope(auth.ScopeSettingsWrite) {
			writeError(w, http.StatusForbidden, "forbidden", "scope settings:write required")
			return
		}
		var req UpdateSettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		settings, err := req.toSettings(userID, groupID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		if err := h.settings.SaveSettings(r.Context(), settings); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSettingsView(settings))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) profileByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/profiles/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing profile id")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !claims.HasScope(auth.ScopeHealthRead) {
			writeError(w, http.StatusForbidden, "forbidden", "scope health:read required")
			return
		}
		profile, err := h.profiles.Profile(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if profile == nil {
			writeError(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}
		writeJSON(w, http.StatusOK, toProfileView(*profile))
	case http.MethodPatch:
		if !claims.HasScope(auth.ScopeProfilesAdmin) {
			writeError(w, http.StatusForbidden, "forbidden", "scope profiles:admin required")
			return
		}
		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		update, err := req.toUpdate()
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		if err := h.profiles.UpdateProfile(r.Context(), id, update); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

// handleRecords dispatches /v1/records by method: POST uploads a batch, GET
// pages through the caller's own series.
func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.postRecords(w, r)
	case http.MethodGet:
		h.listRecords(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity.CurrentUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	claims, _ := auth.FromContext(r.Context())
	if !claims.HasScope(auth.ScopeHealthRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope health:read required")
		return
	}

	recordType, err := domain.ParseRecordType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			writeError(w, http.StatusBadRequest, "validation_failed", "limit must be between 1 and 200")
			return
		}
		limit = parsed
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("page_token"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid page_token")
		return
	}

	page, next, err := h.records.QueryRecords(r.Context(), userID, recordType, nil, cursor, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := ListRecordsResponse{Records: make([]RecordView, 0, len(page))}
	for _, rec := range page {
		resp.Records = append(resp.Records, RecordView{
			ID:        rec.ID,
			Type:      string(rec.Type),
			Value:     rec.Value,
			Timestamp: rec.Timestamp,
		})
	}
	resp.NextPageToken = persistence.EncodeCursor(next)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) postRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity.CurrentUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	claims, _ := auth.FromContext(r.Context())
	if !claims.HasScope(auth.ScopeHealthWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope health:write required")
		return
	}

	var req WriteRecordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	records, err := req.toRecords(userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	if err := h.records.WriteRecords(r.Context(), userID, records); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, WriteRecordsResponse{Accepted: len(records)})
}

func (h *Handler) exportArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	userID, ok := h.identity.CurrentUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	claims, _ := auth.FromContext(r.Context())
	if !claims.HasScope(auth.ScopeHealthRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope health:read required")
		return
	}

	archive, err := h.exporter.ExportAll(r.Context(), userID)
	var partial *export.PartialExport
	if err != nil && !errors.As(err, &partial) {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+archive.Filename+"\"")
	if partial != nil {
		w.Header().Set("X-Export-Partial", "true")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive.Data)
}

func writeResolutionError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "server_error", err.Error())
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "server_error", err.Error())
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

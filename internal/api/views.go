package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"example.com/healthshare/internal/domain"
	"example.com/healthshare/internal/policy"
)

// RecordView is one record as rendered in shared views.
type RecordView struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// OwnerViewResponse is one owner's contribution to the shared group view.
type OwnerViewResponse struct {
	OwnerID     string       `json:"owner_id"`
	DisplayName string       `json:"display_name"`
	Records     []RecordView `json:"records"`
}

// FailureView describes one per-owner fetch that could not complete.
type FailureView struct {
	OwnerID string `json:"owner_id"`
	Type    string `json:"type,omitempty"`
	Detail  string `json:"detail"`
}

// SharedViewResponse packages the shared group view, including any owners
// whose data could not be fetched.
type SharedViewResponse struct {
	GroupID  string              `json:"group_id"`
	Owners   []OwnerViewResponse `json:"owners"`
	Failures []FailureView       `json:"failures,omitempty"`
}

// OwnerTotalsResponse is one owner's per-type sums.
type OwnerTotalsResponse struct {
	OwnerID     string             `json:"owner_id"`
	DisplayName string             `json:"display_name"`
	Totals      map[string]float64 `json:"totals"`
}

// SelfTotalsResponse packages the self aggregation view.
type SelfTotalsResponse struct {
	GroupID  string                `json:"group_id"`
	Owners   []OwnerTotalsResponse `json:"owners"`
	Failures []FailureView         `json:"failures,omitempty"`
}

// SettingsView renders one owner's sharing settings for a group.
type SettingsView struct {
	OwnerID             string          `json:"owner_id"`
	GroupID             string          `json:"group_id"`
	IsAnonymous         bool            `json:"is_anonymous"`
	DisplayNameOverride string          `json:"display_name_override,omitempty"`
	DeletionDate        *time.Time      `json:"deletion_date,omitempty"`
	Visibility          map[string]bool `json:"visibility"`
}

// UpdateSettingsRequest is the payload for PUT /v1/groups/{g}/settings.
type UpdateSettingsRequest struct {
	IsAnonymous         bool            `json:"is_anonymous"`
	DisplayNameOverride string          `json:"display_name_override"`
	DeletionDate        *time.Time      `json:"deletion_date"`
	Visibility          map[string]bool `json:"visibility"`
}

func (r UpdateSettingsRequest) toSettings(ownerID, groupID string) (domain.SharingSettings, error) {
	visibility := make(map[domain.RecordType]bool, len(r.Visibility))
	for key, visible := range r.Visibility {
		recordType, err := domain.ParseRecordType(key)
		if err != nil {
			return domain.SharingSettings{}, fmt.Errorf("visibility: %w", err)
		}
		visibility[recordType] = visible
	}
	return domain.SharingSettings{
		OwnerID:             ownerID,
		GroupID:             groupID,
		IsAnonymous:         r.IsAnonymous,
		DisplayNameOverride: strings.TrimSpace(r.DisplayNameOverride),
		DeletionDate:        r.DeletionDate,
		Visibility:          visibility,
	}, nil
}

// ProfileView renders a user profile.
type ProfileView struct {
	UserID      string   `json:"user_id"`
	DisplayName string   `json:"display_name"`
	Role        string   `json:"role"`
	Groups      []string `json:"groups"`
}

// UpdateProfileRequest is the payload for PATCH /v1/profiles/{id}. It
// replaces the admin-editable fields as a unit.
type UpdateProfileRequest struct {
	Role   string   `json:"role"`
	Groups []string `json:"groups"`
}

func (r UpdateProfileRequest) toUpdate() (domain.ProfileUpdate, error) {
	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return domain.ProfileUpdate{}, err
	}
	return domain.ProfileUpdate{Role: role, Groups: r.Groups}, nil
}

// WriteRecordsRequest is the payload for POST /v1/records.
type WriteRecordsRequest struct {
	Records []RecordInput `json:"records"`
}

// RecordInput is one sample supplied by the client.
type RecordInput struct {
	Type      string    `json:"type"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

func (r WriteRecordsRequest) toRecords(ownerID string) ([]domain.HealthRecord, error) {
	if len(r.Records) == 0 {
		return nil, errors.New("records is required")
	}
	out := make([]domain.HealthRecord, 0, len(r.Records))
	for i, input := range r.Records {
		recordType, err := domain.ParseRecordType(input.Type)
		if err != nil {
			return nil, fmt.Errorf("records[%d]: %w", i, err)
		}
		if input.Timestamp.IsZero() {
			return nil, fmt.Errorf("records[%d]: timestamp is required", i)
		}
		ts := input.Timestamp.UTC()
		out = append(out, domain.HealthRecord{
			ID:        domain.NewRecordID(ownerID, recordType, ts, input.Value),
			OwnerID:   ownerID,
			Type:      recordType,
			Value:     input.Value,
			Timestamp: ts,
		})
	}
	return out, nil
}

// ListRecordsResponse is one page of the caller's own records, newest
// first, with an opaque token for the next page.
type ListRecordsResponse struct {
	Records       []RecordView `json:"records"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

// WriteRecordsResponse acknowledges accepted records.
type WriteRecordsResponse struct {
	Accepted int `json:"accepted"`
}

func toOwnerView(view policy.OwnerView) OwnerViewResponse {
	out := OwnerViewResponse{
		OwnerID:     view.OwnerID,
		DisplayName: view.DisplayName,
		Records:     make([]RecordView, 0, len(view.Records)),
	}
	for _, rec := range view.Records {
		out.Records = append(out.Records, RecordView{
			ID:        rec.ID,
			Type:      string(rec.Type),
			Value:     rec.Value,
			Timestamp: rec.Timestamp,
		})
	}
	return out
}

func toFailureViews(partial *policy.PartialFailure) []FailureView {
	if partial == nil {
		return nil
	}
	out := make([]FailureView, 0, len(partial.Failures))
	for _, failure := range partial.Failures {
		out = append(out, FailureView{
			OwnerID: failure.OwnerID,
			Type:    string(failure.Type),
			Detail:  failure.Err.Error(),
		})
	}
	return out
}

func toSettingsView(settings domain.SharingSettings) SettingsView {
	visibility := make(map[string]bool, len(domain.AllRecordTypes))
	for _, t := range domain.AllRecordTypes {
		visibility[string(t)] = settings.TypeVisible(t)
	}
	return SettingsView{
		OwnerID:             settings.OwnerID,
		GroupID:             settings.GroupID,
		IsAnonymous:         settings.IsAnonymous,
		DisplayNameOverride: settings.DisplayNameOverride,
		DeletionDate:        settings.DeletionDate,
		Visibility:          visibility,
	}
}

func toProfileView(profile domain.UserProfile) ProfileView {
	groups := profile.Groups
	if groups == nil {
		groups = []string{}
	}
	return ProfileView{
		UserID:      profile.ID,
		DisplayName: profile.DisplayName,
		Role:        string(profile.Role),
		Groups:      groups,
	}
}

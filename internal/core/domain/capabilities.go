package domain

// Capabilities is the set of rights a resolved caller holds for one poll.
type Capabilities struct {
	CanView               bool `json:"can_view"`
	CanEdit               bool `json:"can_edit"`
	CanManage             bool `json:"can_manage"`
	CanAudit              bool `json:"can_audit"`
	CanViewResults        bool `json:"can_view_results"`
	CanViewParticipants   bool `json:"can_view_participants"`
	CanManageParticipants bool `json:"can_manage_participants"`
	CanViewSettings       bool `json:"can_view_settings"`
	CanEditSettings       bool `json:"can_edit_settings"`
	CanDelete             bool `json:"can_delete"`
}

// Union folds two capability sets with a per-field boolean OR. Relationship
// grants accumulate additively, so a caller holding several relations gets
// the union, never the first match.
func (c Capabilities) Union(o Capabilities) Capabilities {
	return Capabilities{
		CanView:               c.CanView || o.CanView,
		CanEdit:               c.CanEdit || o.CanEdit,
		CanManage:             c.CanManage || o.CanManage,
		CanAudit:              c.CanAudit || o.CanAudit,
		CanViewResults:        c.CanViewResults || o.CanViewResults,
		CanViewParticipants:   c.CanViewParticipants || o.CanViewParticipants,
		CanManageParticipants: c.CanManageParticipants || o.CanManageParticipants,
		CanViewSettings:       c.CanViewSettings || o.CanViewSettings,
		CanEditSettings:       c.CanEditSettings || o.CanEditSettings,
		CanDelete:             c.CanDelete || o.CanDelete,
	}
}

// AllCapabilities is what a global admin holds on every poll.
func AllCapabilities() Capabilities {
	return Capabilities{
		CanView:               true,
		CanEdit:               true,
		CanManage:             true,
		CanAudit:              true,
		CanViewResults:        true,
		CanViewParticipants:   true,
		CanManageParticipants: true,
		CanViewSettings:       true,
		CanEditSettings:       true,
		CanDelete:             true,
	}
}

// ManagerCapabilities is the manager grant: everything except delete, which
// stays admin-exclusive.
func ManagerCapabilities() Capabilities {
	c := AllCapabilities()
	c.CanDelete = false
	return c
}

func AuditorCapabilities() Capabilities {
	return Capabilities{
		CanView:             true,
		CanAudit:            true,
		CanViewResults:      true,
		CanViewParticipants: true,
		CanViewSettings:     true,
	}
}

func EditorCapabilities() Capabilities {
	return Capabilities{
		CanView:               true,
		CanEdit:               true,
		CanViewResults:        true,
		CanViewParticipants:   true,
		CanManageParticipants: true,
		CanViewSettings:       true,
		CanEditSettings:       true,
	}
}

// ParticipantCapabilities depends on the poll settings: results visibility is
// granted only when the poll allows participants to view results at all.
func ParticipantCapabilities(settings Settings) Capabilities {
	return Capabilities{
		CanView:        true,
		CanViewResults: settings.AllowResultsView,
	}
}

// AccessTier is the coarse access category driving results redaction.
type AccessTier string

const (
	TierAdmin       AccessTier = "admin"
	TierManager     AccessTier = "manager"
	TierAuditor     AccessTier = "auditor"
	TierEditor      AccessTier = "editor"
	TierParticipant AccessTier = "participant"
	TierNone        AccessTier = "none"
)

package entity

import (
	"fmt"
	"time"
)

// LegacyHostRecord is one row of the host-keyed moz_hosts table.
type LegacyHostRecord struct {
	ID                 int64
	Host               string
	Type               string
	Permission         int
	ExpireType         ExpireType
	ExpireTime         time.Time
	ModificationTime   time.Time
	AppID              uint32
	IsInBrowserElement bool
}

// Attributes returns the isolation attributes implied by the row.
func (r *LegacyHostRecord) Attributes() OriginAttributes {
	return OriginAttributes{AppID: r.AppID, InBrowser: r.IsInBrowserElement}
}

// SchemePort is a scheme and port observed in browsing history.
// Port is 0 for the scheme's default port.
type SchemePort struct {
	Scheme string
	Port   int
}

func (sp SchemePort) String() string {
	if sp.Port == 0 {
		return sp.Scheme
	}
	return fmt.Sprintf("%s:%d", sp.Scheme, sp.Port)
}

// Visit is a single history visit.
type Visit struct {
	URL       string
	Scheme    string
	Host      string
	Port      int
	VisitedAt time.Time
}

// MigrationPhase is the state of the legacy schema migration.
type MigrationPhase string

const (
	MigrationNeeded     MigrationPhase = "needs-migration"
	MigrationInProgress MigrationPhase = "migrating"
	MigrationDone       MigrationPhase = "migrated"
)

// MigrationState reports the phase and the applied schema version.
type MigrationState struct {
	Phase   MigrationPhase
	Version int64
}

func (s MigrationState) String() string {
	if s.Phase == MigrationDone {
		return fmt.Sprintf("%s(version=%d)", s.Phase, s.Version)
	}
	return string(s.Phase)
}

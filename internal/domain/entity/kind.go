package entity

import (
	"fmt"
	"slices"
)

// KindDefinition describes how a permission kind behaves.
type KindDefinition struct {
	Kind PermissionKind

	// States lists the valid states for the kind, in display order.
	States []PermissionState

	// ExactHostMatch kinds only apply to the origin that set them.
	// Other kinds are inherited by subdomains up to the registrable domain.
	ExactHostMatch bool
}

// defaultStates applies to kinds whose default decision is "ask".
var defaultStates = []PermissionState{StateUnknown, StateAllow, StateBlock}

// binaryStates applies to kinds that always have an allow/block default.
var binaryStates = []PermissionState{StateAllow, StateBlock}

// DefaultKindDefinitions returns the built-in permission kind table.
func DefaultKindDefinitions() []KindDefinition {
	return []KindDefinition{
		{Kind: PermissionKindCamera, States: defaultStates, ExactHostMatch: true},
		{Kind: PermissionKindCookie, States: []PermissionState{StateAllow, StateAllowCookiesForSession, StateBlock}},
		{Kind: PermissionKindDesktopNotification, States: defaultStates, ExactHostMatch: true},
		{Kind: PermissionKindGeolocation, States: defaultStates, ExactHostMatch: true},
		{Kind: PermissionKindImage, States: binaryStates},
		{Kind: PermissionKindIndexedDB, States: defaultStates},
		{Kind: PermissionKindInstall, States: binaryStates},
		{Kind: PermissionKindMicrophone, States: defaultStates, ExactHostMatch: true},
		{Kind: PermissionKindPopup, States: binaryStates},
		{Kind: PermissionKindScreen, States: defaultStates, ExactHostMatch: true},
	}
}

// KindRegistry is an immutable, validated kind table.
type KindRegistry struct {
	order []PermissionKind
	defs  map[PermissionKind]KindDefinition
}

// NewKindRegistry validates defs and builds a registry.
// Every kind must be named once and list at least one state, without duplicates.
func NewKindRegistry(defs []KindDefinition) (*KindRegistry, error) {
	r := &KindRegistry{defs: make(map[PermissionKind]KindDefinition, len(defs))}
	for _, def := range defs {
		if def.Kind == "" {
			return nil, fmt.Errorf("kind definition without a name")
		}
		if _, dup := r.defs[def.Kind]; dup {
			return nil, fmt.Errorf("kind %q defined twice", def.Kind)
		}
		if len(def.States) == 0 {
			return nil, fmt.Errorf("kind %q has no states", def.Kind)
		}
		for i, s := range def.States {
			if slices.Contains(def.States[:i], s) {
				return nil, fmt.Errorf("kind %q lists state %s twice", def.Kind, s)
			}
		}
		def.States = slices.Clone(def.States)
		r.defs[def.Kind] = def
		r.order = append(r.order, def.Kind)
	}
	slices.Sort(r.order)
	return r, nil
}

// MustNewKindRegistry is NewKindRegistry for static tables.
func MustNewKindRegistry(defs []KindDefinition) *KindRegistry {
	r, err := NewKindRegistry(defs)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultKindRegistry returns a registry over DefaultKindDefinitions.
func DefaultKindRegistry() *KindRegistry {
	return MustNewKindRegistry(DefaultKindDefinitions())
}

// Kinds returns all registered kinds in sorted order.
func (r *KindRegistry) Kinds() []PermissionKind {
	return slices.Clone(r.order)
}

// IsRegistered reports whether kind has a definition.
func (r *KindRegistry) IsRegistered(kind PermissionKind) bool {
	_, ok := r.defs[kind]
	return ok
}

// States returns the valid states for kind.
// Unregistered kinds use [UNKNOWN, ALLOW, BLOCK].
func (r *KindRegistry) States(kind PermissionKind) []PermissionState {
	if def, ok := r.defs[kind]; ok {
		return slices.Clone(def.States)
	}
	return slices.Clone(defaultStates)
}

// ExactHostMatch reports whether kind is bound to the exact origin.
func (r *KindRegistry) ExactHostMatch(kind PermissionKind) bool {
	return r.defs[kind].ExactHostMatch
}

// ValidateState returns an *InvalidStateError if state is not allowed for kind.
func (r *KindRegistry) ValidateState(kind PermissionKind, state PermissionState) error {
	if !slices.Contains(r.States(kind), state) {
		return &InvalidStateError{Kind: kind, State: state}
	}
	return nil
}

package entity

// Permission is a custom type for bitwise flags
type Permission int64

const (
	// PermissionAdministrator grants god-mode.
	// Admins are immune to all restrictions and cannot be modified via API.
	PermissionAdministrator Permission = 1 << iota

	// PermissionRunAnalysis allows submitting a company URL to the analysis pipeline.
	PermissionRunAnalysis

	// PermissionForceRefresh allows skipping a saved record and paying for a new analysis.
	PermissionForceRefresh

	// PermissionCompareCompanies allows sending a second URL for comparison.
	PermissionCompareCompanies

	// PermissionViewSaved allows listing previously saved analyses.
	PermissionViewSaved
)

// PermissionDefault is granted to every account on signup.
const PermissionDefault = PermissionRunAnalysis |
	PermissionForceRefresh |
	PermissionCompareCompanies |
	PermissionViewSaved

// Has checks if the permission bitmask contains ALL bits
// requested in 'target'. It ignores Administrator status.
// Logic: (p & target) == target
func (p Permission) Has(target Permission) bool {
	return (p & target) == target
}

// HasEffective checks if the permission bitmask contains the target bits
// OR if the permission includes Administrator
func (p Permission) HasEffective(target Permission) bool {
	return p.Has(PermissionAdministrator) || p.Has(target)
}

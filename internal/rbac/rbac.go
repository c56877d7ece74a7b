package rbac

import "github.com/case-tracker/backend/internal/models"

type Permission string

// Permission constants
const (
	PermReadCases          Permission = "read_cases"
	PermWriteCases         Permission = "write_cases"
	PermBulkUpdate         Permission = "bulk_update"
	PermComment            Permission = "comment"
	PermEditAnyObservation Permission = "edit_any_observation"
	PermUploadEvidence     Permission = "upload_evidence"
	PermImport             Permission = "import"
	PermExport             Permission = "export"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[models.Role][]Permission{
	models.RoleViewer: {
		PermReadCases, PermExport,
	},
	models.RoleEditor: {
		PermReadCases, PermExport,
		PermWriteCases, PermBulkUpdate, PermComment, PermEditAnyObservation, PermUploadEvidence, PermImport,
	},
	models.RoleAdmin: {
		PermReadCases, PermExport,
		PermWriteCases, PermBulkUpdate, PermComment, PermEditAnyObservation, PermUploadEvidence, PermImport,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role models.Role, permission Permission) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// IsWriteOperation reports whether the permission mutates cases. Viewers
// hold none of these.
func IsWriteOperation(permission Permission) bool {
	return permission != PermReadCases && permission != PermExport
}

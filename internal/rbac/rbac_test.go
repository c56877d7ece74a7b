package rbac

import (
	"testing"

	"github.com/case-tracker/backend/internal/models"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role models.Role
		perm Permission
		want bool
	}{
		{models.RoleViewer, PermReadCases, true},
		{models.RoleViewer, PermExport, true},
		{models.RoleViewer, PermWriteCases, false},
		{models.RoleViewer, PermImport, false},
		{models.RoleEditor, PermBulkUpdate, true},
		{models.RoleEditor, PermEditAnyObservation, true},
		{models.RoleAdmin, PermImport, true},
		{models.Role("GUEST"), PermReadCases, false},
	}
	for _, tt := range tests {
		if got := HasPermission(tt.role, tt.perm); got != tt.want {
			t.Errorf("HasPermission(%s, %s) = %v; want %v", tt.role, tt.perm, got, tt.want)
		}
	}
}

func TestViewerHoldsNoWriteOperation(t *testing.T) {
	for _, p := range RolePermissions[models.RoleViewer] {
		if IsWriteOperation(p) {
			t.Errorf("viewer holds write permission %s", p)
		}
	}
}

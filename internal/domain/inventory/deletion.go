package inventory

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DeletionWindow antigüedad máxima de un movimiento eliminable, sin importar el rol.
const DeletionWindow = 7 * 24 * time.Hour

// Motivos de rechazo de la política de eliminación.
const (
	ReasonNotFound               = "record not found"
	ReasonTooOld                 = "cannot delete old records"
	ReasonInsufficientPermission = "insufficient permission"
)

// DeletePermission resultado de la política de eliminación.
type DeletePermission struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// CanDelete evalúa en orden: existencia, antigüedad, rol privilegiado, autoría (STAFF).
// La antigüedad se evalúa antes que el rol: ni ADMIN ni el autor borran registros viejos.
func CanDelete(entry *entity.Movement, userID, role string, now time.Time) DeletePermission {
	if entry == nil || entry.DeletedAt != nil {
		return DeletePermission{Reason: ReasonNotFound}
	}
	if now.Sub(entry.CreatedAt) > DeletionWindow {
		return DeletePermission{Reason: ReasonTooOld}
	}
	if entity.IsPrivilegedRole(role) {
		return DeletePermission{Allowed: true}
	}
	if role == entity.RoleStaff && entry.CreatedBy != "" && entry.CreatedBy == userID {
		return DeletePermission{Allowed: true}
	}
	return DeletePermission{Reason: ReasonInsufficientPermission}
}

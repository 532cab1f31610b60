package user

type Permission string

const (
	// Attendance
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceCreate  Permission = "attendance.create"

	// Reminder engine
	PermissionReminderViewStatus Permission = "reminder.view_status"
	PermissionReminderTrigger    Permission = "reminder.trigger"

	// Settings
	PermissionSettingsView   Permission = "settings.view"
	PermissionSettingsManage Permission = "settings.manage"

	// Notifications
	PermissionNotificationViewOwn Permission = "notification.view_own"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionReminderViewStatus,
		PermissionReminderTrigger,
		PermissionSettingsView,
		PermissionSettingsManage,
		PermissionNotificationViewOwn,
	},
	RoleManager: {
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionReminderViewStatus,
		PermissionSettingsView,
		PermissionNotificationViewOwn,
	},
	RoleEmployee: {
		// Employee has basic access
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionSettingsView,
		PermissionNotificationViewOwn,
	},
	RoleOperator: {
		PermissionReminderViewStatus,
		PermissionReminderTrigger,
		PermissionSettingsView,
		PermissionSettingsManage,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

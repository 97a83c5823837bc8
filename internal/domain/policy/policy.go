// Package policy decides which actor role may perform which API action.
package policy

// Role 请求方角色
type Role int

const (
	Anonymous Role = iota
	Authenticated
	Staff
)

func (r Role) String() string {
	switch r {
	case Authenticated:
		return "authenticated"
	case Staff:
		return "staff"
	default:
		return "anonymous"
	}
}

// Action 受控的 API 操作
type Action string

const (
	ActionHealth         Action = "health"
	ActionRegister       Action = "register"
	ActionObtainToken    Action = "obtain_token"
	ActionListResidents  Action = "list_residents"
	ActionViewResident   Action = "view_resident"
	ActionCreateResident Action = "create_resident"
	ActionUpdateResident Action = "update_resident"
	ActionDeleteResident Action = "delete_resident"
	ActionListPhotos     Action = "list_photos"
	ActionUploadPhoto    Action = "upload_photo"
	ActionViewPhoto      Action = "view_photo"
	ActionUpdatePhoto    Action = "update_photo"
	ActionDeletePhoto    Action = "delete_photo"
	ActionSetPrimary     Action = "set_primary"
	ActionAdminSummary   Action = "admin_summary"
)

// Decision 策略判定结果
type Decision int

const (
	Allow Decision = iota
	// Unauthenticated 需要登录，对应 401
	Unauthenticated
	// Forbidden 已登录但权限不足，对应 403
	Forbidden
)

// minimum role required per action
var rules = map[Action]Role{
	ActionHealth:         Anonymous,
	ActionRegister:       Anonymous,
	ActionObtainToken:    Anonymous,
	ActionListResidents:  Authenticated,
	ActionViewResident:   Authenticated,
	ActionCreateResident: Authenticated,
	ActionUpdateResident: Authenticated,
	ActionDeleteResident: Staff,
	ActionListPhotos:     Authenticated,
	ActionUploadPhoto:    Authenticated,
	ActionViewPhoto:      Authenticated,
	ActionUpdatePhoto:    Authenticated,
	ActionDeletePhoto:    Authenticated,
	ActionSetPrimary:     Authenticated,
	ActionAdminSummary:   Staff,
}

// Evaluate 判断 role 是否可以执行 action，未登记的操作只允许员工
func Evaluate(role Role, action Action) Decision {
	required, ok := rules[action]
	if !ok {
		required = Staff
	}
	if role >= required {
		return Allow
	}
	if role == Anonymous {
		return Unauthenticated
	}
	return Forbidden
}

// Actions 返回所有登记的操作
func Actions() []Action {
	actions := make([]Action, 0, len(rules))
	for a := range rules {
		actions = append(actions, a)
	}
	return actions
}

package i18n

// Code is a stable message catalog key. Handlers and usecases pass codes
// around; the translated text is resolved only at the response boundary.
type Code string

// Generic envelope messages.
const (
	CodeBadRequest          Code = "bad_request"
	CodeUnauthorized        Code = "unauthorized"
	CodeForbidden           Code = "forbidden"
	CodeNotFound            Code = "not_found"
	CodeConflict            Code = "conflict"
	CodeUnprocessable       Code = "unprocessable"
	CodeInternalServerError Code = "internal_server_error"
)

// Success messages.
const (
	CodeLoginSuccess       Code = "login"
	CodeLogoutSuccess      Code = "logout"
	CodeTokenRefreshed     Code = "token_refresh"
	CodeUserList           Code = "user_list"
	CodeUserRecovered      Code = "user_recovered"
	CodeUserCreated        Code = "user_create"
	CodeUserUpdated        Code = "user_update"
	CodePasswordUpdated    Code = "user_password_update"
	CodeLanguageUpdated    Code = "user_update_language"
	CodeRoleList           Code = "role_list"
	CodeRoleDetails        Code = "role_details"
	CodeRoleCreated        Code = "role_create"
	CodeRoleUpdated        Code = "role_update"
	CodeRoleDeleted        Code = "role_destroy"
	CodeRoleAssigned       Code = "role_assign"
	CodePermissionAssigned Code = "permission_assign"
	CodePermissionList     Code = "permissions_list"
	CodeLogList            Code = "log_list"
	CodeLogDetails         Code = "log_details"
)

// Error messages.
const (
	CodeTokenRequired          Code = "token_required"
	CodeTokenInvalid           Code = "token_invalid"
	CodeRefreshFailed          Code = "refresh_failed"
	CodeLogoutFailed           Code = "logout_failed"
	CodeFieldRequired          Code = "field_required"
	CodeInvalidCredentials     Code = "user_invalid_credentials"
	CodeEmailTaken             Code = "user_invalid_email"
	CodeUserDisabled           Code = "user_disabled"
	CodeInvalidCurrentPassword Code = "invalid_current_password"
	CodeCannotModifyUser       Code = "no_permission_to_modify_user"
	CodeUserNotFound           Code = "user_do_not_exists"
	CodePasswordsDoNotMatch    Code = "passwords_do_not_match"
	CodePasswordTooShort       Code = "password_do_short"
	CodePasswordNoUppercase    Code = "password_any_uppercase"
	CodePasswordNoLowercase    Code = "password_any_lowercase"
	CodePasswordNoNumber       Code = "password_any_number"
	CodePasswordNoSpecial      Code = "password_any_special"
	CodePasswordTooWeak        Code = "password_do_weak"
	CodeRoleExists             Code = "role_do_exists"
	CodeRolePermissionsInvalid Code = "role_do_not_permissions"
	CodeRoleInUse              Code = "role_do_assign"
	CodePermissionListRequired Code = "permissions_list_required"
)

// Audit trail labels.
const (
	LogLogin            Code = "log.login"
	LogLogout           Code = "log.logout"
	LogTokenRefresh     Code = "log.token_refresh"
	LogUserList         Code = "log.user_list"
	LogUserDetails      Code = "log.user_details"
	LogUserCreate       Code = "log.user_create"
	LogUserUpdate       Code = "log.user_update"
	LogPasswordUpdate   Code = "log.user_password_update"
	LogLanguageUpdate   Code = "log.user_update_language"
	LogRoleList         Code = "log.role_list"
	LogRoleDetails      Code = "log.role_details"
	LogRoleCreate       Code = "log.role_create"
	LogRoleUpdate       Code = "log.role_update"
	LogRoleDestroy      Code = "log.role_destroy"
	LogRoleAssign       Code = "log.role_assign"
	LogRoleRemove       Code = "log.role_remove"
	LogLogList          Code = "log.log_list"
	LogLogDetails       Code = "log.log_details"
)

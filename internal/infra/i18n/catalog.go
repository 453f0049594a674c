package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// SupportedLanguages lists the language codes accepted for user profiles.
var SupportedLanguages = []string{"es", "en"}

type entry struct {
	code Code
	en   string
	es   string
}

var translations = []entry{
	{CodeBadRequest, "Validation errors.", "Errores de validación."},
	{CodeUnauthorized, "Not authorized. Invalid token.", "No autorizado. Token no válido."},
	{CodeForbidden, "Access denied.", "Acceso denegado."},
	{CodeNotFound, "Resource not found.", "Recurso no encontrado."},
	{CodeConflict, "Conflict in processing the request.", "Conflicto al procesar la solicitud."},
	{CodeUnprocessable, "The entity cannot be processed.", "La entidad no puede ser procesada."},
	{CodeInternalServerError, "Internal server error.", "Error interno del servidor."},

	{CodeLoginSuccess, "Login successful.", "Inicio de sesión exitoso."},
	{CodeLogoutSuccess, "Session closed successfully.", "Sesión cerrada exitosamente."},
	{CodeTokenRefreshed, "Token refreshed successfully.", "Token actualizado exitosamente."},
	{CodeUserList, "User list.", "Lista de usuarios."},
	{CodeUserRecovered, "User successfully recovered.", "Usuario recuperado correctamente."},
	{CodeUserCreated, "User created successfully.", "Usuario creado exitosamente."},
	{CodeUserUpdated, "User updated successfully.", "Usuario actualizado exitosamente."},
	{CodePasswordUpdated, "Updated user password.", "Actualizó la contraseña del usuario."},
	{CodeLanguageUpdated, "User language updated successfully.", "Idioma del usuario actualizado exitosamente."},
	{CodeRoleList, "Role list.", "Lista de roles."},
	{CodeRoleDetails, "Role details.", "Detalles del rol."},
	{CodeRoleCreated, "Role created successfully.", "Rol creado exitosamente."},
	{CodeRoleUpdated, "Role updated successfully.", "Rol actualizado exitosamente."},
	{CodeRoleDeleted, "Role deleted successfully.", "Rol eliminado exitosamente."},
	{CodeRoleAssigned, "Role assigned successfully.", "Rol asignado exitosamente."},
	{CodePermissionAssigned, "Permission assigned successfully.", "Permiso asignado exitosamente."},
	{CodePermissionList, "Permissions list.", "Lista de permisos."},
	{CodeLogList, "Access logs list.", "Listado de logs de acceso."},
	{CodeLogDetails, "Access log details.", "Detalle del log de acceso."},

	{CodeTokenRequired, "Token is required.", "El token es requerido."},
	{CodeTokenInvalid, "The token is invalid or has already been revoked.", "El token es inválido o ya ha sido revocado."},
	{CodeRefreshFailed, "Could not refresh the session.", "No se pudo actualizar la sesión."},
	{CodeLogoutFailed, "Could not close the session.", "No se pudo cerrar la sesión."},
	{CodeFieldRequired, "Field is required.", "Este campo es requerido."},
	{CodeInvalidCredentials, "User not found, invalid credentials.", "Usuario no encontrado, credenciales inválidas."},
	{CodeEmailTaken, "A user with this email already exists.", "Ya existe un usuario con este email."},
	{CodeUserDisabled, "User is disabled.", "El usuario está desactivado."},
	{CodeInvalidCurrentPassword, "Current password is incorrect.", "La contraseña actual es incorrecta."},
	{CodeCannotModifyUser, "You do not have permission to change this user.", "No tienes permiso para modificar este usuario."},
	{CodeUserNotFound, "User not found.", "Usuario no encontrado."},
	{CodePasswordsDoNotMatch, "Passwords do not match.", "Las contraseñas no coinciden."},
	{CodePasswordTooShort, "Password must be at least 8 characters long.", "La contraseña debe tener al menos 8 caracteres."},
	{CodePasswordNoUppercase, "Password must contain at least one uppercase letter.", "La contraseña debe contener al menos una letra mayúscula."},
	{CodePasswordNoLowercase, "Password must contain at least one lowercase letter.", "La contraseña debe contener al menos una letra minúscula."},
	{CodePasswordNoNumber, "Password must contain at least one number.", "La contraseña debe contener al menos un número."},
	{CodePasswordNoSpecial, "Password must contain at least one special character (e.g. !@#$%).", "La contraseña debe contener al menos un carácter especial (!@#$% etc)."},
	{CodePasswordTooWeak, "Password is too weak.", "La contraseña es demasiado débil."},
	{CodeRoleExists, "A role with this name already exists.", "Ya existe un rol con este nombre."},
	{CodeRolePermissionsInvalid, "Must be a list of permission IDs.", "Debe ser una lista de IDs de permisos."},
	{CodeRoleInUse, "Cannot delete a role that has users assigned.", "No se puede eliminar un rol que tiene usuarios asignados."},
	{CodePermissionListRequired, "Must provide a list of permission IDs.", "Debe enviar una lista de IDs de permisos."},

	{LogLogin, "User logged in.", "Inicio de sesión."},
	{LogLogout, "User logged out.", "Cierre de sesión."},
	{LogTokenRefresh, "Token refreshed.", "Actualización de token."},
	{LogUserList, "Viewed user list.", "Visualizó el listado de usuarios."},
	{LogUserDetails, "Viewed user details.", "Visualizó los detalles del usuario."},
	{LogUserCreate, "Created a new user.", "Creó un nuevo usuario."},
	{LogUserUpdate, "Updated user.", "Actualizó el usuario."},
	{LogPasswordUpdate, "Password updated successfully.", "Contraseña cambiada exitosamente."},
	{LogLanguageUpdate, "Updated user language.", "Actualizó idioma del usuario."},
	{LogRoleList, "Viewed role list.", "Visualizó el listado de roles."},
	{LogRoleDetails, "Viewed role details.", "Visualizó el detalle del rol."},
	{LogRoleCreate, "Created a new role.", "Creó un nuevo rol."},
	{LogRoleUpdate, "Updated role.", "Actualizó el rol."},
	{LogRoleDestroy, "Deleted role.", "Eliminó el rol."},
	{LogRoleAssign, "Assigned role.", "Rol asignado."},
	{LogRoleRemove, "Removed role.", "Rol removido."},
	{LogLogList, "Viewed access logs list.", "Visualizó el listado de logs."},
	{LogLogDetails, "Viewed access log details.", "Visualizó los detalles del log."},
}

// Translator resolves message codes to localized text. In strict mode a
// missing translation panics, so the gap is caught in development instead
// of leaking raw codes to clients.
type Translator struct {
	builder  *catalog.Builder
	fallback language.Tag
	strict   bool
}

// NewTranslator builds the message catalog. defaultLanguage is used when
// a request carries no usable language; strict enables the loud failure
// mode for missing codes.
func NewTranslator(defaultLanguage string, strict bool) (*Translator, error) {
	fallback := parseTag(defaultLanguage)
	if fallback == language.Und {
		return nil, fmt.Errorf("i18n: unsupported default language %q", defaultLanguage)
	}

	builder := catalog.NewBuilder(catalog.Fallback(fallback))
	for _, tr := range translations {
		if err := builder.SetString(language.English, string(tr.code), tr.en); err != nil {
			return nil, fmt.Errorf("i18n: register %q (en): %w", tr.code, err)
		}
		if err := builder.SetString(language.Spanish, string(tr.code), tr.es); err != nil {
			return nil, fmt.Errorf("i18n: register %q (es): %w", tr.code, err)
		}
	}

	return &Translator{
		builder:  builder,
		fallback: fallback,
		strict:   strict,
	}, nil
}

// Resolve returns the translation of code in the requested language,
// falling back to the default language for unknown ones.
func (t *Translator) Resolve(lang string, code Code) string {
	tag := parseTag(lang)
	if tag == language.Und {
		tag = t.fallback
	}

	printer := message.NewPrinter(tag, message.Catalog(t.builder))
	out := printer.Sprintf(string(code))
	if out == string(code) {
		// The printer echoes the key when no translation exists.
		if t.strict {
			panic(fmt.Sprintf("i18n: missing translation for code %q", code))
		}
	}
	return out
}

// ResolveOr returns the translation of code, or fallback when none is
// registered. It never panics; use it for dynamic keys whose absence is
// expected.
func (t *Translator) ResolveOr(lang string, code Code, fallback string) string {
	tag := parseTag(lang)
	if tag == language.Und {
		tag = t.fallback
	}

	printer := message.NewPrinter(tag, message.Catalog(t.builder))
	out := printer.Sprintf(string(code))
	if out == string(code) {
		return fallback
	}
	return out
}

// NormalizeLanguage maps arbitrary input onto a supported language code,
// returning an empty string for unsupported values.
func NormalizeLanguage(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "es", "es-mx", "es-es":
		return "es"
	case "en", "en-us", "en-gb":
		return "en"
	default:
		return ""
	}
}

func parseTag(lang string) language.Tag {
	switch NormalizeLanguage(lang) {
	case "es":
		return language.Spanish
	case "en":
		return language.English
	default:
		return language.Und
	}
}

package session

import "fmt"

// =============================================================================
// Validation messages
// =============================================================================

const (
	MsgInvalidEmail      = "El correo electrónico no es válido"
	MsgPasswordRequired  = "La contraseña es obligatoria"
	MsgFirstNameRequired = "El nombre es obligatorio"
	MsgLastNameRequired  = "El apellido es obligatorio"
	MsgPasswordMismatch  = "Las contraseñas no coinciden"
	MsgTermsRequired     = "Debes aceptar los términos y condiciones"
)

func MsgPasswordTooShort(n int) string {
	return fmt.Sprintf("La contraseña debe tener al menos %d caracteres", n)
}

// =============================================================================
// Session messages
// =============================================================================

const (
	MsgLoggingIn           = "Iniciando sesión..."
	MsgRegistering         = "Creando tu cuenta..."
	MsgWelcomeTitle        = "¡Bienvenido!"
	MsgWelcome             = "Hola, %s"
	MsgLoginFailedTitle    = "Error de inicio de sesión"
	MsgLoginFailed         = "No se pudo iniciar sesión. Verifica tus credenciales e inténtalo de nuevo."
	MsgRegisterTitle       = "Registro exitoso"
	MsgRegistered          = "Tu cuenta fue creada. Ya puedes iniciar sesión."
	MsgRegisterFailedBody  = "No se pudo completar el registro. Inténtalo de nuevo."
	MsgRegisterFailed      = "Error de registro"
	MsgLoggedOutTitle      = "Sesión cerrada"
	MsgLoggedOut           = "Has cerrado sesión correctamente."
	MsgSessionExpiredTitle = "Sesión expirada"
	MsgSessionExpired      = "Tu sesión ha expirado. Inicia sesión nuevamente."
	MsgSessionWarningTitle = "Tu sesión está por expirar"
	MsgSessionWarning      = `
		Tu sesión expirará en %d minutos.
		¿Deseas mantener la sesión activa?
	`
)

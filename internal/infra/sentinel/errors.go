package sentinel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"credit-gateway/internal/domain/entity"
)

// User-facing messages returned by the bureau client.
const (
	msgNotFound           = "Persona no encontrada en el sistema crediticio"
	msgUpstreamRateLimit  = "Límite de consultas excedido. Intente más tarde"
	msgUpstreamInternal   = "Error interno del servicio crediticio"
	msgServiceUnavailable = "Servicio crediticio no disponible temporalmente"
	msgUnreachable        = "Servicio crediticio no disponible"
	msgTimeout            = "Tiempo de espera agotado al consultar servicio crediticio"
)

// errorBody is the error document the bureau sends with non-2xx statuses.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// statusError maps a non-2xx bureau response to a typed error.
func statusError(status int, body []byte) *entity.CreditError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	detail := eb.text()

	ce := &entity.CreditError{Status: status}
	switch status {
	case http.StatusBadRequest:
		ce.Kind = entity.KindValidation
		if detail == "" {
			detail = "Formato incorrecto"
		}
		ce.Message = "DNI inválido: " + detail
	case http.StatusNotFound:
		ce.Kind = entity.KindNotFound
		ce.Message = msgNotFound
	case http.StatusTooManyRequests:
		ce.Kind = entity.KindUpstreamRateLimit
		ce.Message = msgUpstreamRateLimit
	case http.StatusInternalServerError:
		ce.Kind = entity.KindUpstreamInternal
		ce.Message = msgUpstreamInternal
	case http.StatusServiceUnavailable:
		ce.Kind = entity.KindServiceUnavailable
		ce.Message = msgServiceUnavailable
	default:
		ce.Kind = entity.KindUnknownUpstream
		if detail == "" {
			detail = "Error desconocido"
		}
		ce.Message = "Error del servicio crediticio: " + detail
	}
	return ce
}

// transportError maps a failure that produced no HTTP response.
func transportError(err error) *entity.CreditError {
	var (
		netErr net.Error
		dnsErr *net.DNSError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return entity.NewCreditError(entity.KindTimeout, msgTimeout, err)
	case errors.As(err, &dnsErr):
		return entity.NewCreditError(entity.KindServiceUnavailable, msgUnreachable, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return entity.NewCreditError(entity.KindTimeout, msgTimeout, err)
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, syscall.EHOSTUNREACH):
		return entity.NewCreditError(entity.KindServiceUnavailable, msgUnreachable, err)
	default:
		return entity.NewCreditError(entity.KindUnknownUpstream,
			fmt.Sprintf("Error de conexión: %v", err), err)
	}
}

// outcome is the metrics label for a request result.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return entity.KindOf(err).String()
}

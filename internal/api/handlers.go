package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/galacerda/fiscal-api/internal/common/apperrors"
	"github.com/galacerda/fiscal-api/internal/common/auth"
	"github.com/galacerda/fiscal-api/internal/common/config"
	"github.com/galacerda/fiscal-api/internal/common/logger"
	"github.com/galacerda/fiscal-api/internal/common/server"
	"github.com/galacerda/fiscal-api/internal/identity"
	"github.com/galacerda/fiscal-api/internal/irregularity"
	"github.com/galacerda/fiscal-api/internal/vehicle"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IdentityProvider emite credenciais de bootstrap e verifica login.
type IdentityProvider interface {
	IssueDeviceCredentials(ctx context.Context, deviceID string) (*identity.Credentials, error)
	VerifyCredentials(ctx context.Context, email, password string) (*identity.AuthUser, error)
}

// PlateConsulter consulta a regularização de uma placa.
type PlateConsulter interface {
	ConsultPlate(ctx context.Context, plate string) (*vehicle.ConsultResult, error)
}

// Registrar registra e lista irregularidades.
type Registrar interface {
	Register(ctx context.Context, in irregularity.RegisterInput) (*irregularity.Report, error)
	List(ctx context.Context, in irregularity.ListInput) ([]irregularity.Report, int64, error)
}

// API expõe as operações públicas como endpoints HTTP JSON no estilo callable.
type API struct {
	log       logger.Logger
	authCfg   config.AuthConfig
	identity  IdentityProvider
	vehicles  PlateConsulter
	registrar Registrar
}

func New(log logger.Logger, authCfg config.AuthConfig, provider IdentityProvider, vehicles PlateConsulter, registrar Registrar) *API {
	return &API{
		log:       log,
		authCfg:   authCfg,
		identity:  provider,
		vehicles:  vehicles,
		registrar: registrar,
	}
}

// Register liga as rotas no mux. As rotas de fiscalização exigem o bearer
// token emitido pelo login; as demais são públicas.
func (a *API) Register(mux *http.ServeMux) {
	protected := server.JWTAuth(a.authCfg, a.log)

	mux.Handle("/v1/getUserAuth", a.post(a.handleGetUserAuth))
	mux.Handle("/v1/login", a.post(a.handleLogin))
	mux.Handle("/v1/consultPlate", a.post(a.handleConsultPlate))
	mux.Handle("/v1/registerIrregularity", protected(a.post(a.handleRegisterIrregularity)))
	mux.Handle("/v1/listIrregularities", protected(a.post(a.handleListIrregularities)))
}

type getUserAuthRequest struct {
	DeviceID string `json:"deviceId"`
}

func (a *API) handleGetUserAuth(w http.ResponseWriter, r *http.Request) {
	var req getUserAuthRequest
	if !a.decode(w, r, &req) {
		return
	}

	creds, err := a.identity.IssueDeviceCredentials(r.Context(), req.DeviceID)
	if err != nil {
		a.writeFault(w, r, err)
		return
	}

	a.writeEnvelope(w, Success("deu certo", map[string]interface{}{
		"email":    creds.Email,
		"password": creds.TemporaryPassword,
	}))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decode(w, r, &req) {
		return
	}

	u, err := a.identity.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeFault(w, r, err)
		return
	}

	ttl := time.Duration(a.authCfg.TokenTTLMins) * time.Minute
	token, expiresAt, err := auth.GenerateAccessToken(a.authCfg, u.ID, u.RolesSlice(), ttl)
	if err != nil {
		a.writeFault(w, r, apperrors.Infrastructure("sign access token", err))
		return
	}

	a.writeEnvelope(w, Success("Login efetuado", map[string]interface{}{
		"accessToken": token,
		"expiresAt":   expiresAt.UTC().Format(time.RFC3339),
	}))
}

type consultPlateRequest struct {
	Plate string `json:"plate"`
}

func (a *API) handleConsultPlate(w http.ResponseWriter, r *http.Request) {
	var req consultPlateRequest
	if !a.decode(w, r, &req) {
		return
	}

	res, err := a.vehicles.ConsultPlate(r.Context(), req.Plate)
	if err != nil {
		a.writeFault(w, r, err)
		return
	}

	payload := map[string]interface{}{
		"placaConsultada": res.Plate,
		"regularizado":    res.Regularized,
	}
	switch {
	case !res.Found:
		a.writeEnvelope(w, Success("Veiculo não foi encontrado.", payload))
	case !res.Regularized:
		a.writeEnvelope(w, Success("Veiculo não está regularizado.", payload))
	default:
		payload["permitEndLocalTime"] = res.PermitEndLocal
		a.writeEnvelope(w, Success("Veículo regularizado até: "+res.PermitEndLocal, payload))
	}
}

type registerIrregularityRequest struct {
	Plate  string   `json:"plate"`
	Photos []string `json:"photos"`
	Type   string   `json:"type"`
}

type reportDTO struct {
	ID       string   `json:"id,omitempty"`
	Placa    string   `json:"placa"`
	Fotos    []string `json:"fotos"`
	Fiscal   string   `json:"fiscal"`
	Type     string   `json:"type,omitempty"`
	CriadaEm string   `json:"criadaEm,omitempty"`
}

func toReportDTO(rep *irregularity.Report) reportDTO {
	dto := reportDTO{
		ID:     rep.ID,
		Placa:  rep.Plate,
		Fotos:  rep.Photos(),
		Fiscal: rep.FiscalID,
		Type:   rep.Type,
	}
	if !rep.CreatedAt.IsZero() {
		dto.CriadaEm = rep.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func (a *API) handleRegisterIrregularity(w http.ResponseWriter, r *http.Request) {
	var req registerIrregularityRequest
	if !a.decode(w, r, &req) {
		return
	}

	ai, _ := server.AuthFromContext(r.Context())
	rep, err := a.registrar.Register(r.Context(), irregularity.RegisterInput{
		CallerUID: ai.Subject,
		Plate:     req.Plate,
		Photos:    req.Photos,
		Type:      irregularity.Type(req.Type),
	})
	if err != nil {
		// desfecho de negócio: envelope ERROR com HTTP 200, não fault
		switch apperrors.KindOf(err) {
		case apperrors.KindUnauthorized, apperrors.KindNotFound:
			a.logOutcome(r, err)
			a.writeEnvelope(w, Error(apperrors.UserMessage(err), map[string]interface{}{
				"placa": req.Plate,
			}))
			return
		}
		a.writeFault(w, r, err)
		return
	}

	a.writeEnvelope(w, Success("Irregularidade foi criada", toReportDTO(rep)))
}

type listIrregularitiesRequest struct {
	Plate  string `json:"plate"`
	Fiscal string `json:"fiscal"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

func (a *API) handleListIrregularities(w http.ResponseWriter, r *http.Request) {
	var req listIrregularitiesRequest
	if !a.decode(w, r, &req) {
		return
	}

	if _, ok := server.AuthFromContext(r.Context()); !ok {
		a.writeEnvelope(w, Error("Usuario não autenticado", nil))
		return
	}

	reports, total, err := a.registrar.List(r.Context(), irregularity.ListInput{
		Plate:    req.Plate,
		FiscalID: req.Fiscal,
		Offset:   req.Offset,
		Limit:    req.Limit,
	})
	if err != nil {
		a.writeFault(w, r, err)
		return
	}

	dtos := make([]reportDTO, 0, len(reports))
	for i := range reports {
		dtos = append(dtos, toReportDTO(&reports[i]))
	}
	a.writeEnvelope(w, Success("Consulta realizada", map[string]interface{}{
		"total":     total,
		"registros": dtos,
	}))
}

// post restringe o método e devolve fault no formato callable para o resto.
func (a *API) post(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, faultBody{faultDetail{
				Status:  codeName(codes.InvalidArgument),
				Message: "POST required",
			}})
			return
		}
		h(w, r)
	})
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		a.logOutcome(r, apperrors.Validation(apperrors.GenericMessage, "malformed request body: "+err.Error()))
		writeJSON(w, http.StatusBadRequest, faultBody{faultDetail{
			Status:  codeName(codes.InvalidArgument),
			Message: apperrors.GenericMessage,
		}})
		return false
	}
	return true
}

type faultBody struct {
	Error faultDetail `json:"error"`
}

type faultDetail struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// writeFault responde no formato de fault do protocolo callable: nome do
// código gRPC + mensagem segura para o chamador. O detalhe real já foi logado.
func (a *API) writeFault(w http.ResponseWriter, r *http.Request, err error) {
	a.logOutcome(r, err)

	st := status.New(apperrors.GRPCCode(err), apperrors.UserMessage(err))
	writeJSON(w, httpStatus(st.Code()), faultBody{faultDetail{
		Status:  codeName(st.Code()),
		Message: st.Message(),
	}})
}

func (a *API) writeEnvelope(w http.ResponseWriter, env Envelope) {
	writeJSON(w, http.StatusOK, env)
}

func (a *API) logOutcome(r *http.Request, err error) {
	if a.log == nil || err == nil {
		return
	}
	entry := a.log.WithField("path", r.URL.Path)
	if apperrors.KindOf(err) == apperrors.KindInfrastructure {
		entry.Errorf("request failed: %v", err)
		return
	}
	entry.Warnf("request rejected: %v", err)
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// codeName devolve o nome do código no formato que o protocolo callable usa.
func codeName(c codes.Code) string {
	switch c {
	case codes.InvalidArgument:
		return "invalid-argument"
	case codes.NotFound:
		return "not-found"
	case codes.Unauthenticated:
		return "unauthenticated"
	case codes.ResourceExhausted:
		return "resource-exhausted"
	default:
		return "internal"
	}
}

func httpStatus(c codes.Code) int {
	switch c {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

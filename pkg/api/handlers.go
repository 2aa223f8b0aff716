package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/suinft/nft-studio-go/pkg/blockchain"
	"github.com/suinft/nft-studio-go/pkg/model"
	"github.com/suinft/nft-studio-go/pkg/sdk"
)

// multipart overhead allowed on top of the image itself
const uploadSlack = 1 << 20

type handler struct {
	core    *sdk.Core
	metrics *metrics
}

type draftRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"img_url"`
}

type walletRequest struct {
	PrivateKey string `json:"private_key"`
}

func (h *handler) routes(r chi.Router) {
	r.Get("/state", h.getState)
	r.Get("/config", h.getConfig)
	r.Put("/config", h.putConfig)
	r.Post("/wallet", h.connectWallet)
	r.Delete("/wallet", h.disconnectWallet)
	r.Get("/functions", h.getFunctions)
	r.Get("/capability", h.getCapability)
	r.Get("/nfts", h.getNFTs)
	r.Post("/refresh", h.refresh)
	r.Post("/mint", h.mint)
	r.Post("/estimate", h.estimate)
	r.Post("/preview", h.preview)
	r.Post("/upload", h.upload)
	r.Get("/image", h.image)
}

// getState handles GET /api/state.
func (h *handler) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.core.Session().State())
}

// getConfig handles GET /api/config.
func (h *handler) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.core.Session().Contract())
}

// putConfig handles PUT /api/config. The triple is replaced as a whole and
// the capability and NFTs are recomputed for it. A failed recomputation
// leaves the new triple applied and is reported in the state's error.
func (h *handler) putConfig(w http.ResponseWriter, r *http.Request) {
	var c model.ContractConfig
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	err := h.core.Session().ApplyContract(r.Context(), c)
	if isValidation(err) {
		writeFailure(w, err)
		return
	}
	h.metrics.queries.WithLabelValues(outcome(err)).Inc()
	writeJSON(w, http.StatusOK, h.core.Session().State())
}

// connectWallet handles POST /api/wallet. The key uses any format accepted
// by blockchain.ParsePrivateKey.
func (h *handler) connectWallet(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	signer, err := blockchain.ParsePrivateKey(req.PrivateKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid private key")
		return
	}
	err = h.core.Session().SwitchAccount(r.Context(), signer)
	h.metrics.queries.WithLabelValues(outcome(err)).Inc()
	writeJSON(w, http.StatusOK, h.core.Session().State())
}

// disconnectWallet handles DELETE /api/wallet.
func (h *handler) disconnectWallet(w http.ResponseWriter, r *http.Request) {
	_ = h.core.Session().SwitchAccount(r.Context(), nil)
	writeJSON(w, http.StatusOK, h.core.Session().State())
}

// getFunctions handles GET /api/functions.
func (h *handler) getFunctions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"presets": model.FunctionPresets,
		"current": h.core.Session().Contract().Function,
	})
}

// getCapability handles GET /api/capability.
func (h *handler) getCapability(w http.ResponseWriter, r *http.Request) {
	st := h.core.Session().State()
	writeJSON(w, http.StatusOK, map[string]any{
		"account":    st.Account,
		"capability": st.Capability,
		"resolved":   st.Capability.Resolved(),
	})
}

// getNFTs handles GET /api/nfts. It reports the last committed gallery; use
// POST /api/refresh to query again.
func (h *handler) getNFTs(w http.ResponseWriter, r *http.Request) {
	st := h.core.Session().State()
	nfts := st.NFTs
	if nfts == nil {
		nfts = []model.DisplayNFT{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account": st.Account,
		"nfts":    nfts,
		"error":   st.Error,
	})
}

// refresh handles POST /api/refresh.
func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	err := h.core.Session().Refresh(r.Context())
	h.metrics.queries.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.core.Session().State())
}

// mint handles POST /api/mint.
func (h *handler) mint(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.core.Session().Mint(r.Context(), req.ImageURL)
	h.metrics.mints.WithLabelValues(outcome(err)).Inc()
	if isStale(err) && res != nil {
		// the transaction did execute; report it alongside the conflict
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "digest": res.Digest})
		return
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// estimate handles POST /api/estimate. Blank fields are replaced by sample
// values; the body may be empty.
func (h *handler) estimate(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	est, err := h.core.Session().EstimateGas(r.Context(), sdk.EstimateInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.metrics.estimates.WithLabelValues("stale").Inc()
		writeFailure(w, err)
		return
	}
	h.metrics.estimates.WithLabelValues(string(est.Status)).Inc()
	writeJSON(w, http.StatusOK, est)
}

// preview handles POST /api/preview.
func (h *handler) preview(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := h.core.Session().Preview(req.Name, req.Description, req.ImageURL)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// upload handles POST /api/upload with a multipart "file" field.
func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxUploadSize+uploadSlack)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.metrics.uploads.WithLabelValues("invalid").Inc()
			writeError(w, http.StatusBadRequest, model.ErrImageTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "missing multipart field \"file\"")
		return
	}
	defer file.Close()

	up, err := h.core.UploadImage(r.Context(), header.Filename, file)
	h.metrics.uploads.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, up)
}

// image handles GET /api/image?uri=..., serving an http(s) or ipfs:// image
// through the configured storage.
func (h *handler) image(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.core.ReadImage(r.Context(), r.URL.Query().Get("uri"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		zap.L().Warn("failed to write image", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFailure maps the error taxonomy onto HTTP statuses.
func writeFailure(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var (
		qe *model.QueryError
		se *model.SubmissionError
	)
	switch {
	case isValidation(err):
		return http.StatusBadRequest
	case isStale(err):
		return http.StatusConflict
	case errors.As(err, &qe), errors.As(err, &se):
		return http.StatusBadGateway
	case errors.Is(err, sdk.ErrStorageNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func isValidation(err error) bool { return model.IsValidation(err) }

func isStale(err error) bool { return errors.Is(err, sdk.ErrStaleResult) }

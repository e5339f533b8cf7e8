package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/offersvc/domain"
	"github.com/you/offersvc/internal/http/middleware"
	"github.com/you/offersvc/internal/mocks"
)

func setupOfferRouter(offerSvc domain.OfferService, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	authed := func(c *gin.Context) {
		if userID != 0 {
			c.Set(middleware.ContextUserID, userID)
		}
		c.Next()
	}

	r.POST("/offers", authed, NewOfferHandlers(offerSvc).MakeOffer)
	r.POST("/offers/:id/respond", authed, NewOfferHandlers(offerSvc).Respond)
	r.GET("/cars/:id/offer-status", authed, NewOfferHandlers(offerSvc).OfferStatus)
	r.GET("/cars/:id/actions", authed, NewOfferHandlers(offerSvc).Actions)
	r.GET("/pricing/preview", NewOfferHandlers(offerSvc).PricePreview)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOfferHandlers_MakeOffer(t *testing.T) {
	tests := []struct {
		name         string
		userID       uint
		body         any
		setupService func(*mocks.MockOfferService)
		expectedCode int
	}{
		{
			name:   "successful submission",
			userID: 1,
			body:   MakeOfferRequest{CarID: 10, Amount: 90000},
			setupService: func(svc *mocks.MockOfferService) {
				svc.SubmitFunc = func(ctx context.Context, carID, buyerID uint, amount int64, message string) (*domain.Offer, error) {
					return &domain.Offer{ID: 1, CarID: carID, Amount: amount, AskingPrice: 100000, Status: domain.OfferStatusPending}, nil
				}
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "unauthenticated",
			userID:       0,
			body:         MakeOfferRequest{CarID: 10, Amount: 90000},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "missing fields",
			userID:       1,
			body:         gin.H{"car_id": 10},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:   "blocked offer carries the percentage",
			userID: 1,
			body:   MakeOfferRequest{CarID: 10, Amount: 55000},
			setupService: func(svc *mocks.MockOfferService) {
				svc.SubmitFunc = func(ctx context.Context, carID, buyerID uint, amount int64, message string) (*domain.Offer, error) {
					return nil, &domain.OfferBlockedError{PercentBelowAsking: 45.0}
				}
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:   "listing not found",
			userID: 1,
			body:   MakeOfferRequest{CarID: 999, Amount: 90000},
			setupService: func(svc *mocks.MockOfferService) {
				svc.SubmitFunc = func(ctx context.Context, carID, buyerID uint, amount int64, message string) (*domain.Offer, error) {
					return nil, domain.ErrListingNotFound
				}
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:   "self offer",
			userID: 2,
			body:   MakeOfferRequest{CarID: 10, Amount: 90000},
			setupService: func(svc *mocks.MockOfferService) {
				svc.SubmitFunc = func(ctx context.Context, carID, buyerID uint, amount int64, message string) (*domain.Offer, error) {
					return nil, domain.ErrSelfOffer
				}
			},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockOfferService()
			if tt.setupService != nil {
				tt.setupService(svc)
			}

			r := setupOfferRouter(svc, tt.userID)
			w := doJSON(t, r, http.MethodPost, "/offers", tt.body)

			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
		})
	}
}

func TestOfferHandlers_MakeOffer_BlockedBody(t *testing.T) {
	svc := mocks.NewMockOfferService()
	svc.SubmitFunc = func(ctx context.Context, carID, buyerID uint, amount int64, message string) (*domain.Offer, error) {
		return nil, &domain.OfferBlockedError{PercentBelowAsking: 45.0}
	}

	r := setupOfferRouter(svc, 1)
	w := doJSON(t, r, http.MethodPost, "/offers", MakeOfferRequest{CarID: 10, Amount: 55000})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		PercentBelowAsking float64 `json:"percent_below_asking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 45.0, resp.PercentBelowAsking)
}

func TestOfferHandlers_Respond(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		body         any
		setupService func(*mocks.MockOfferService)
		expectedCode int
	}{
		{
			name: "seller accepts",
			path: "/offers/1/respond",
			body: RespondRequest{Decision: domain.DecisionAccept},
			setupService: func(svc *mocks.MockOfferService) {
				svc.RespondFunc = func(ctx context.Context, offerID, actingUserID uint, decision domain.OfferDecision) (*domain.Offer, error) {
					return &domain.Offer{ID: offerID, Status: domain.OfferStatusAccepted}, nil
				}
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "bad offer id",
			path:         "/offers/abc/respond",
			body:         RespondRequest{Decision: domain.DecisionAccept},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "unknown decision",
			path:         "/offers/1/respond",
			body:         gin.H{"decision": "maybe"},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "not the seller",
			path: "/offers/1/respond",
			body: RespondRequest{Decision: domain.DecisionAccept},
			setupService: func(svc *mocks.MockOfferService) {
				svc.RespondFunc = func(ctx context.Context, offerID, actingUserID uint, decision domain.OfferDecision) (*domain.Offer, error) {
					return nil, domain.ErrNotSeller
				}
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name: "already resolved",
			path: "/offers/1/respond",
			body: RespondRequest{Decision: domain.DecisionReject},
			setupService: func(svc *mocks.MockOfferService) {
				svc.RespondFunc = func(ctx context.Context, offerID, actingUserID uint, decision domain.OfferDecision) (*domain.Offer, error) {
					return nil, domain.ErrOfferResolved
				}
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "offer not found",
			path: "/offers/999/respond",
			body: RespondRequest{Decision: domain.DecisionAccept},
			setupService: func(svc *mocks.MockOfferService) {
				svc.RespondFunc = func(ctx context.Context, offerID, actingUserID uint, decision domain.OfferDecision) (*domain.Offer, error) {
					return nil, domain.ErrOfferNotFound
				}
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockOfferService()
			if tt.setupService != nil {
				tt.setupService(svc)
			}

			r := setupOfferRouter(svc, 2)
			w := doJSON(t, r, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
		})
	}
}

func TestOfferHandlers_OfferStatus(t *testing.T) {
	svc := mocks.NewMockOfferService()
	svc.StatusFunc = func(ctx context.Context, carID, buyerID uint) (domain.OfferStatus, error) {
		return domain.OfferStatusPending, nil
	}

	r := setupOfferRouter(svc, 1)
	w := doJSON(t, r, http.MethodGet, "/cars/10/offer-status", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.OfferStatusPending), resp.Data.Status)
}

func TestOfferHandlers_Actions(t *testing.T) {
	svc := mocks.NewMockOfferService()
	svc.ActionsFunc = func(ctx context.Context, carID, buyerID uint) (domain.ActionSet, error) {
		return domain.AvailableActions(domain.OfferStatusAccepted), nil
	}

	r := setupOfferRouter(svc, 1)
	w := doJSON(t, r, http.MethodGet, "/cars/10/actions", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data domain.ActionSet `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Chat, "accepted offer should permit chat")
}

func TestOfferHandlers_PricePreview(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		expectedCode  int
		expectedClass domain.PriceClass
	}{
		{"fair", "/pricing/preview?asking_price=100000&amount=90000", http.StatusOK, domain.PriceFair},
		{"warning", "/pricing/preview?asking_price=100000&amount=75000", http.StatusOK, domain.PriceWarning},
		{"blocked", "/pricing/preview?asking_price=100000&amount=55000", http.StatusOK, domain.PriceBlocked},
		{"missing params", "/pricing/preview?amount=90000", http.StatusBadRequest, ""},
		{"garbage amount", "/pricing/preview?asking_price=100000&amount=lots", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupOfferRouter(mocks.NewMockOfferService(), 1)
			w := doJSON(t, r, http.MethodGet, tt.query, nil)

			require.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			if tt.expectedCode != http.StatusOK {
				return
			}
			var resp struct {
				Data struct {
					Class domain.PriceClass `json:"class"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedClass, resp.Data.Class)
		})
	}
}

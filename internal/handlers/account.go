package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ndodonov/accounts/internal/apperrors"
	"github.com/ndodonov/accounts/internal/handlers/accountctx"
	"github.com/ndodonov/accounts/internal/handlers/render"
	"github.com/ndodonov/accounts/internal/models"
)

// Account wire shape, password hash never leaves the service
type accountResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

func toAccountResponse(a models.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Username:  a.Username,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Avatar:    a.Avatar,
	}
}

func handleCreateAccount(accounts accountService) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Username string `json:"username" validate:"required,min=2,max=50"`
		Password string `json:"password" validate:"required,min=8"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		account, err := accounts.Create(r.Context(), data.Email, data.Username, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrAccountAlreadyExists):
				render.ServiceError(w, "Username already taken", http.StatusConflict)
			default:
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, toAccountResponse(account), http.StatusCreated)
	})
}

func handleListAccounts(accounts accountService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Auth middleware has to put the caller identity into the context
		if _, ok := accountctx.FromContext(r.Context()); !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		list, err := accounts.List(r.Context())
		if err != nil {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]accountResponse, 0, len(list))
		for _, a := range list {
			response = append(response, toAccountResponse(a))
		}

		render.JSON(w, response)
	})
}

func handleGetAccount(accounts accountService) http.Handler {
	type links struct {
		Self   string `json:"self"`
		Parent string `json:"parent"`
	}
	type response struct {
		accountResponse
		Links links `json:"_links"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			render.ServiceError(w, "Account not found", http.StatusNotFound)
			return
		}

		account, err := accounts.Get(r.Context(), id)
		if err != nil {
			writeAccountError(w, err)
			return
		}

		render.JSON(w, response{
			accountResponse: toAccountResponse(account),
			Links: links{
				Self:   fmt.Sprintf("/accounts/%d", account.ID),
				Parent: "/accounts",
			},
		})
	})
}

func handleUpdateAccount(accounts accountService) http.Handler {
	type request struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Avatar    *string `json:"avatar"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			render.ServiceError(w, "Account not found", http.StatusNotFound)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		account, err := accounts.Update(r.Context(), id, models.AccountUpdate{
			FirstName: data.FirstName,
			LastName:  data.LastName,
			Avatar:    data.Avatar,
		})
		if err != nil {
			writeAccountError(w, err)
			return
		}

		render.JSON(w, toAccountResponse(account))
	})
}

func handleUpdateAvatar(accounts accountService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			render.ServiceError(w, "Account not found", http.StatusNotFound)
			return
		}

		file, header, err := r.FormFile("avatar")
		if err != nil {
			render.ServiceError(w, "Multipart field 'avatar' is required", http.StatusBadRequest)
			return
		}
		defer file.Close() // nolint:errcheck

		account, err := accounts.UpdateAvatar(r.Context(), id, header.Filename, file)
		if err != nil {
			writeAccountError(w, err)
			return
		}

		render.JSON(w, toAccountResponse(account))
	})
}

func accountID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound):
		render.ServiceError(w, "Account not found", http.StatusNotFound)
	default:
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

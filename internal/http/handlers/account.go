package handlers

import (
	"errors"
	"net/http"

	"sorastudio/internal/domain"
)

// Me returns the caller's account record including the current balance.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	accountID := a.currentAccountID(r)
	if accountID == "" {
		a.error(w, r, http.StatusUnauthorized, codeUnauthorized)
		return
	}
	acct, err := a.Ledger.GetAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			a.error(w, r, http.StatusNotFound, codeAccountNotFound)
			return
		}
		a.Logger.Error().Err(err).Str("account_id", accountID).Msg("me: account lookup failed")
		a.error(w, r, http.StatusInternalServerError, codeInternal)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":          acct.ID,
		"displayName": acct.DisplayName,
		"credits":     acct.CreditBalance,
	})
}

package api

import (
	"net/http"

	"github.com/skni-kod/kolo-rest-api/database"
	"github.com/skni-kod/kolo-rest-api/dto"
	"github.com/skni-kod/kolo-rest-api/models"
)

type hardwareHandler = crudHandler[models.Hardware, dto.HardwareWrite, dto.Hardware]

func newHardwareHandler(deps handlerDeps) hardwareHandler {
	return newCRUDHandler[models.Hardware, dto.HardwareWrite, dto.Hardware](
		"hardwareHandler", "hardware", deps, deps.db.HardwareRepo(),
		dto.NewHardware, dto.HardwareWriteFrom, dto.HardwareWrite.Apply)
}

type rentalHandler struct {
	handlerBase
	rentals *database.HardwareRentalRepo
	pager   pager
}

func newRentalHandler(deps handlerDeps) rentalHandler {
	return rentalHandler{
		handlerBase: newHandlerBase("rentalHandler", deps),
		rentals:     deps.db.HardwareRentalRepo(),
		pager:       deps.pager,
	}
}

func (h rentalHandler) listRentals() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.pager.parse(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		rentals, total, err := h.rentals.FindAll(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "hardware rentals", err))
			return
		}
		writeList(h.responder, w, r, page, total, dto.NewHardwareRentals(rentals))
	}
}

func (h rentalHandler) writeRental(w http.ResponseWriter, r *http.Request, id uint, status int) {
	rental, err := h.rentals.FindByID(r.Context(), id)
	if err != nil {
		h.responder.WriteError(w, wrapDatabaseError("find", "hardware rental", err))
		return
	}
	h.responder.WriteJSONStatus(w, status, dto.NewHardwareRental(*rental))
}

func (h rentalHandler) getRental() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.writeRental(w, r, id, http.StatusOK)
	}
}

// createRental opens a rental. Without an explicit user the requester is the renter.
func (h rentalHandler) createRental() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.HardwareRentalWrite{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if payload.User == 0 {
			payload.User = currentUserID(r)
		}
		var rental models.HardwareRental
		payload.Apply(&rental)
		if err := h.rentals.Add(r.Context(), &rental); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "hardware rental", err))
			return
		}
		h.logger.Info().
			Uint("rentalID", rental.ID).
			Uint("hardwareID", rental.HardwareID).
			Uint("userID", rental.UserID).
			Msg("hardware rented")
		h.writeRental(w, r, rental.ID, http.StatusCreated)
	}
}

func (h rentalHandler) updateRental() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		rental, err := h.rentals.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "hardware rental", err))
			return
		}
		payload, err := bindWrite(w, r, dto.HardwareRentalWriteFrom(*rental))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if payload.User == 0 {
			payload.User = rental.UserID
		}
		payload.Apply(rental)
		if err := h.rentals.Update(r.Context(), rental); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "hardware rental", err))
			return
		}
		h.writeRental(w, r, id, http.StatusOK)
	}
}

// returnRental closes an open rental now.
func (h rentalHandler) returnRental() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.rentals.Return(r.Context(), id, nowUTC()); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("return", "hardware rental", err))
			return
		}
		h.logger.Info().Uint("rentalID", id).Msg("hardware returned")
		h.writeRental(w, r, id, http.StatusOK)
	}
}

func (h rentalHandler) deleteRental() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.rentals.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "hardware rental", err))
			return
		}
		h.responder.WriteNoContent(w)
	}
}

package handlers

import (
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func leadQuery(c *gin.Context) (services.LeadQuery, error) {
	page, limit := helpers.GetPagination(c)
	active, err := queryBool(c, "isActive")
	if err != nil {
		return services.LeadQuery{}, err
	}
	return services.LeadQuery{
		Page:             page,
		Limit:            limit,
		IsActive:         active,
		Search:           c.Query("search"),
		TripType:         c.Query("tripType"),
		DreamDestination: c.Query("dreamDestination"),
	}, nil
}

// ---- waitlist

func JoinWaitlist(w *services.WaitlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.WaitlistInput
		if !bindJSON(c, &in) {
			return
		}
		entry, err := w.Add(c.Request.Context(), in)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		created(c, entry, "You have been added to the waitlist")
	}
}

func ListWaitlist(w *services.WaitlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := leadQuery(c)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		res, err := w.List(c.Request.Context(), q)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, res, "")
	}
}

func GetWaitlistEntry(w *services.WaitlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, err := w.Get(c.Request.Context(), param(c, "id"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, entry, "")
	}
}

func UpdateWaitlistEntry(w *services.WaitlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.WaitlistUpdate
		if !bindJSON(c, &in) {
			return
		}
		entry, err := w.Update(c.Request.Context(), param(c, "id"), in)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, entry, "Waitlist entry updated")
	}
}

func RemoveWaitlistEntry(w *services.WaitlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := w.Remove(c.Request.Context(), param(c, "id")); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "Waitlist entry removed")
	}
}

func WaitlistStats(w *services.WaitlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := w.Stats(c.Request.Context())
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, stats, "")
	}
}

// ---- newsletter

func Subscribe(n *services.NewsletterService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req emailRequest
		if !bindJSON(c, &req) {
			return
		}
		sub, err := n.Subscribe(c.Request.Context(), req.Email)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		created(c, sub, "Subscribed to the newsletter")
	}
}

func Unsubscribe(n *services.NewsletterService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req emailRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := n.Unsubscribe(c.Request.Context(), req.Email); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "Unsubscribed from the newsletter")
	}
}

func ListSubscriptions(n *services.NewsletterService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := leadQuery(c)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		res, err := n.List(c.Request.Context(), q)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, res, "")
	}
}

func GetSubscription(n *services.NewsletterService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := n.Get(c.Request.Context(), param(c, "id"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, sub, "")
	}
}

func NewsletterStats(n *services.NewsletterService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := n.Stats(c.Request.Context())
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, stats, "")
	}
}

// ---- contact

func SubmitContact(s *services.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ContactInput
		if !bindJSON(c, &in) {
			return
		}
		entry, err := s.Submit(c.Request.Context(), in)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		created(c, entry, "Thanks for reaching out. We will be in touch")
	}
}

func ListContacts(s *services.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := leadQuery(c)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		res, err := s.List(c.Request.Context(), q)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, res, "")
	}
}

func GetContact(s *services.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, err := s.Get(c.Request.Context(), param(c, "id"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, entry, "")
	}
}

func UpdateContact(s *services.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ContactUpdate
		if !bindJSON(c, &in) {
			return
		}
		entry, err := s.Update(c.Request.Context(), param(c, "id"), in)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, entry, "Contact entry updated")
	}
}

func RemoveContact(s *services.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Remove(c.Request.Context(), param(c, "id")); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "Contact entry removed")
	}
}

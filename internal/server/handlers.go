package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

func (s *Server) listSlots(c *gin.Context) {
	slots, err := s.slots.ListSlots(c.Request.Context(), c.Param("section"))
	if err != nil {
		fail(c, err)
		return
	}
	list(c, slots)
}

func (s *Server) upsertSlot(c *gin.Context) {
	var slot types.Slot
	if err := c.ShouldBindJSON(&slot); err != nil {
		badRequest(c, "invalid slot body: "+err.Error())
		return
	}
	stored, err := s.slots.UpsertSlot(c.Request.Context(), slot)
	if err != nil {
		fail(c, err)
		return
	}
	s.logger.Debug("slot stored",
		zap.String("section", stored.SectionID),
		zap.String("key", stored.SlotKey),
		zap.String("id", stored.ID),
	)
	ok(c, stored)
}

func (s *Server) deleteSlot(c *gin.Context) {
	if err := s.slots.DeleteSlot(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

// draftKey strips the leading slash of the catch-all parameter.
func draftKey(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("key"), "/")
}

func (s *Server) getDraft(c *gin.Context) {
	value, found, err := s.drafts.Get(c.Request.Context(), draftKey(c))
	if err != nil {
		fail(c, err)
		return
	}
	if !found {
		abort(c, http.StatusNotFound, ReasonNotFound, "draft not found")
		return
	}
	ok(c, DraftBody{Value: value})
}

func (s *Server) setDraft(c *gin.Context) {
	var body DraftBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid draft body: "+err.Error())
		return
	}
	if err := s.drafts.Set(c.Request.Context(), draftKey(c), body.Value); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Rehan959/info-tracker-sub000/classify"
	"github.com/Rehan959/info-tracker-sub000/internal/store"
	"github.com/Rehan959/info-tracker-sub000/profile"
	"github.com/Rehan959/info-tracker-sub000/resolve"
)

type createReq struct {
	Input    string `json:"input"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

// createInfluencer resolves the given URL or platform:username token
// and starts tracking the profile.
func (s *Server) createInfluencer(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Input == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input is required"})
		return
	}

	ref, ok := classify.Classify(req.Input)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "unrecognized profile URL or token",
			"outcome": resolve.UnsupportedPlatform,
		})
		return
	}

	if existing, err := s.repo.GetByRef(c.Request.Context(), ref.Platform, ref.Username); err == nil && existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "already tracked", "influencer": existing})
		return
	}

	res := s.resolveCached(c.Request.Context(), ref)
	switch res.Outcome {
	case resolve.Success:
		// Tracked below.
	case resolve.NotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found", "outcome": res.Outcome})
		return
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "profile could not be resolved", "outcome": res.Outcome})
		return
	}

	p := res.Profile
	inf, err := s.repo.Create(c.Request.Context(), &store.Influencer{
		Name:           p.Name,
		Username:       p.Username,
		Platform:       p.Platform,
		Followers:      p.Followers,
		Following:      p.Following,
		Posts:          p.Posts,
		Bio:            p.Bio,
		ProfileURL:     p.ProfileURL,
		ProfilePicture: p.ProfilePicture,
		IsPrivate:      p.IsPrivate,
		IsVerified:     p.IsVerified,
		Category:       req.Category,
		Notes:          req.Notes,
	})
	if err != nil {
		s.logger.ErrorContext(c.Request.Context(), "create influencer failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	if err := s.repo.AddActivity(c.Request.Context(), inf.ID, "added",
		fmt.Sprintf("tracking %s on %s", inf.Username, inf.Platform)); err != nil {
		s.logger.WarnContext(c.Request.Context(), "record activity failed", "error", err)
	}

	c.JSON(http.StatusCreated, gin.H{"influencer": inf, "degraded": res.Degraded})
}

func (s *Server) listInfluencers(c *gin.Context) {
	q := store.ListQuery{Q: c.Query("q")}
	if p := c.Query("platform"); p != "" {
		platform, ok := profile.ParsePlatform(p)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform"})
			return
		}
		q.Platform = platform
	}
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	q.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := s.repo.List(c.Request.Context(), q)
	if err != nil {
		s.logger.ErrorContext(c.Request.Context(), "list influencers failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if list == nil {
		list = []*store.Influencer{}
	}
	c.JSON(http.StatusOK, gin.H{"influencers": list})
}

func (s *Server) getInfluencer(c *gin.Context) {
	inf, err := s.repo.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"influencer": inf})
}

type updateReq struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Notes    *string `json:"notes"`
}

func (s *Server) updateInfluencer(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	current, err := s.repo.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}

	name, category, notes := current.Name, current.Category, current.Notes
	if req.Name != nil {
		name = *req.Name
	}
	if req.Category != nil {
		category = *req.Category
	}
	if req.Notes != nil {
		notes = *req.Notes
	}

	inf, err := s.repo.Update(c.Request.Context(), current.ID, name, category, notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"influencer": inf})
}

func (s *Server) deleteInfluencer(c *gin.Context) {
	err := s.repo.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

type fetchProfileReq struct {
	Input string `json:"input"`
}

// fetchProfile resolves a profile without persisting anything, for the
// dashboard's add-influencer preview.
func (s *Server) fetchProfile(c *gin.Context) {
	var req fetchProfileReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Input == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input is required"})
		return
	}

	ref, ok := classify.Classify(req.Input)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"outcome": resolve.UnsupportedPlatform})
		return
	}

	res := s.resolveCached(c.Request.Context(), ref)
	body := gin.H{"outcome": res.Outcome}
	if res.Profile != nil {
		body["profile"] = res.Profile
		body["degraded"] = res.Degraded
	}
	c.JSON(http.StatusOK, body)
}

// refreshInfluencer re-resolves one tracked profile and applies the
// fresh fields.
func (s *Server) refreshInfluencer(c *gin.Context) {
	inf, err := s.repo.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}

	ref := classify.Ref{Platform: inf.Platform, Username: inf.Username}
	res := s.resolver.ResolveRef(c.Request.Context(), ref)
	if res.Outcome != resolve.Success {
		c.JSON(http.StatusBadGateway, gin.H{"error": "refresh failed", "outcome": res.Outcome})
		return
	}

	before := inf.Followers
	updated, err := s.repo.ApplyProfile(c.Request.Context(), inf.ID, res.Profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if err := s.repo.AddActivity(c.Request.Context(), inf.ID, "refresh",
		fmt.Sprintf("followers %d -> %d", before, updated.Followers)); err != nil {
		s.logger.WarnContext(c.Request.Context(), "record activity failed", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"influencer": updated, "degraded": res.Degraded})
}

// refreshAll re-resolves every tracked profile with bounded fan-out and
// applies whatever succeeded. Failures are reported per ref, not as a
// whole-request error.
func (s *Server) refreshAll(c *gin.Context) {
	list, err := s.repo.List(c.Request.Context(), store.ListQuery{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	byRef := make(map[classify.Ref]*store.Influencer, len(list))
	refs := make([]classify.Ref, 0, len(list))
	for _, inf := range list {
		ref := classify.Ref{Platform: inf.Platform, Username: inf.Username}
		byRef[ref] = inf
		refs = append(refs, ref)
	}

	results := s.resolver.ResolveAll(c.Request.Context(), refs)

	refreshed := 0
	failures := make(map[string]resolve.Outcome)
	for ref, res := range results {
		inf := byRef[ref]
		if res.Outcome != resolve.Success {
			failures[inf.ID] = res.Outcome
			continue
		}
		before := inf.Followers
		updated, err := s.repo.ApplyProfile(c.Request.Context(), inf.ID, res.Profile)
		if err != nil {
			s.logger.ErrorContext(c.Request.Context(), "apply refreshed profile failed",
				"id", inf.ID, "error", err)
			failures[inf.ID] = resolve.AllSourcesFailed
			continue
		}
		if err := s.repo.AddActivity(c.Request.Context(), inf.ID, "refresh",
			fmt.Sprintf("followers %d -> %d", before, updated.Followers)); err != nil {
			s.logger.WarnContext(c.Request.Context(), "record activity failed", "error", err)
		}
		refreshed++
	}

	c.JSON(http.StatusOK, gin.H{
		"refreshed": refreshed,
		"failed":    failures,
	})
}

func (s *Server) dashboard(c *gin.Context) {
	stats, err := s.repo.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	activities, err := s.repo.RecentActivities(c.Request.Context(), 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "activities failed"})
		return
	}
	if activities == nil {
		activities = []*store.Activity{}
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "recentActivities": activities})
}

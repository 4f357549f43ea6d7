package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/minija-farm/minija/pkg/http"
	"github.com/minija-farm/minija/pkg/http/middleware"
)

func (rt *Router) orgRouter(r fiber.Router, auth fiber.Handler) {
	// resolve the caller's org from the path, the X-Organization-ID header
	// or the first active membership, in that order
	orgCtx := middleware.OrgContextMiddleware(rt.orgService.FirstActiveOrgId)

	invGroup := r.Group("/invitations", auth)
	{
		invGroup.Post("/accept", rt.acceptInvitation)
		invGroup.Get("/pending", rt.pendingInvitations)
	}

	orgGroup := r.Group("/org", auth)
	{
		orgGroup.Post("/create", rt.createOrg)
		orgGroup.Get("/list", rt.listOrgs)

		orgGroup.Get("/:orgId", orgCtx, rt.getOrg)
		orgGroup.Put("/:orgId", orgCtx, rt.updateOrg)
		orgGroup.Post("/:orgId/deactivate", orgCtx, rt.deactivateOrg)

		orgGroup.Get("/:orgId/members", orgCtx, rt.listMembers)
		orgGroup.Put("/:orgId/members/:userId/role", orgCtx, rt.updateMemberRole)
		orgGroup.Delete("/:orgId/members/:userId", orgCtx, rt.removeMember)
		orgGroup.Post("/:orgId/transfer", orgCtx, rt.transferOwnership)

		orgGroup.Post("/:orgId/invitations", orgCtx, rt.inviteMember)
		orgGroup.Get("/:orgId/invitations", orgCtx, rt.listInvitations)
		orgGroup.Post("/:orgId/invitations/:invitationId/revoke", orgCtx, rt.revokeInvitation)
	}
}

// requestOrgId reads the org resolved by the org context middleware.
func requestOrgId(c *fiber.Ctx) (string, bool) {
	orgId, ok := c.Locals(middleware.ORG_ID).(string)
	return orgId, ok && orgId != ""
}

func (rt *Router) createOrg(c *fiber.Ctx) error {
	userId, ok := currentUserId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.Unauthorized.Code, http.Unauthorized.Msg, c.Path())
	}
	var req model.CreateOrgReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code,
			http.RequestParameterParsingFailed.Msg, c.Path())
	}

	org, err := rt.orgService.Create(userId, &req)
	if err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.DETAIL, org)
	return nil
}

func (rt *Router) listOrgs(c *fiber.Ctx) error {
	userId, ok := currentUserId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.Unauthorized.Code, http.Unauthorized.Msg, c.Path())
	}
	orgs, err := rt.orgService.ListByUser(userId)
	if err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.DETAIL, orgs)
	return nil
}

func (rt *Router) getOrg(c *fiber.Ctx) error {
	userId, _ := currentUserId(c)
	orgId, ok := requestOrgId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
	}
	org, err := rt.orgService.Get(orgId, userId)
	if err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.DETAIL, org)
	return nil
}

func (rt *Router) updateOrg(c *fiber.Ctx) error {
	userId, _ := currentUserId(c)
	orgId, ok := requestOrgId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
	}
	var req model.UpdateOrgReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code,
			http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if err := rt.orgService.Update(orgId, userId, &req); err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) deactivateOrg(c *fiber.Ctx) error {
	userId, _ := currentUserId(c)
	orgId, ok := requestOrgId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
	}
	if err := rt.orgService.Deactivate(orgId, userId); err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) listMembers(c *fiber.Ctx) error {
	userId, _ := currentUserId(c)
	orgId, ok := requestOrgId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
	}
	members, err := rt.orgService.ListMembers(orgId, userId)
	if err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.DETAIL, members)
	return nil
}

func (rt *Router) updateMemberRole(c *fiber.Ctx) error {
	userId, _ := currentUserId(c)
	orgId, ok := requestOrgId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
	}
	var req model.UpdateMemberRoleReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code,
			http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if err := rt.orgService.UpdateMemberRole(orgId, userId, c.Params("userId"), req.Role); err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) removeMember(c *fiber.Ctx) error {
	userId, _ := currentUserId(c)
	orgId, ok := requestOrgId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
	}
	if err := rt.orgService.RemoveMember(orgId, userId, c.Params("userId")); err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) transferOwnership(c *fiber.Ctx) error {
	userId, _ := currentUserId(c)
	orgId, ok := requestOrgId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
	}
	var req model.TransferOwnershipReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code,
			http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if err := rt.orgService.TransferOwnership(orgId, userId, req.NewOwnerUserId); err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) inviteMember(c *fiber.Ctx) error {
	userId, _ := currentUserId(c)
	orgId, ok := requestOrgId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
	}
	var req model.InviteMemberReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code,
			http.RequestParameterParsingFailed.Msg, c.Path())
	}
	inv, err := rt.orgService.InviteMember(c.UserContext(), orgId, userId, &req)
	if err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.DETAIL, inv)
	return nil
}

func (rt *Router) listInvitations(c *fiber.Ctx) error {
	userId, _ := currentUserId(c)
	orgId, ok := requestOrgId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
	}
	invs, err := rt.orgService.ListInvitations(orgId, userId)
	if err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.DETAIL, invs)
	return nil
}

func (rt *Router) revokeInvitation(c *fiber.Ctx) error {
	userId, _ := currentUserId(c)
	orgId, ok := requestOrgId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
	}
	invitationId := c.Params("invitationId")
	if invitationId == "" {
		return http.WithRepErrMsg(c, http.InvitationIdIsEmpty.Code, http.InvitationIdIsEmpty.Msg, c.Path())
	}
	if err := rt.orgService.RevokeInvitation(orgId, userId, invitationId); err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) acceptInvitation(c *fiber.Ctx) error {
	userId, ok := currentUserId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.Unauthorized.Code, http.Unauthorized.Msg, c.Path())
	}
	var req model.AcceptInvitationReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code,
			http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.Token == "" {
		return http.WithRepErrMsg(c, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Path())
	}
	member, err := rt.orgService.AcceptInvitation(userId, req.Token)
	if err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.DETAIL, member)
	return nil
}

func (rt *Router) pendingInvitations(c *fiber.Ctx) error {
	userId, ok := currentUserId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.Unauthorized.Code, http.Unauthorized.Msg, c.Path())
	}
	invs, err := rt.orgService.ListPendingForUser(userId)
	if err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.DETAIL, invs)
	return nil
}

package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/models"
)

// datetimeLocalLayout matches the value of an HTML datetime-local input.
const datetimeLocalLayout = "2006-01-02T15:04"

type groupForm struct {
	Name     string `form:"name"`
	OwnerID  string `form:"owner_id"`
	Location string `form:"location"`
}

type groupMemberForm struct {
	UserID string `form:"user_id"`
}

type meetingForm struct {
	HappenedAt string `form:"happened_at"`
}

func (handler *Handler) ListGroups(c *fiber.Ctx) error {
	groups, err := handler.repos.Groups.List()
	if err != nil {
		return handler.internalError(c, "list groups", err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

func (handler *Handler) GroupsJSON(c *fiber.Ctx) error {
	groups, err := handler.repos.Groups.List()
	if err != nil {
		return handler.internalError(c, "list groups", err)
	}
	return c.JSON(groups)
}

func (handler *Handler) ShowNewGroup(c *fiber.Ctx) error {
	response := fiber.Map{"page": "new-group"}
	if formError, ok := ParseFormError(c.Query("e")); ok {
		response["error"] = formError.String()
	}
	return c.JSON(response)
}

// CreateGroup creates a group and enrolls its owner as the first member.
func (handler *Handler) CreateGroup(c *fiber.Ctx) error {
	actor, _ := currentUser(c)

	var form groupForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithError(c, "/groups/new", FormErrorOther)
	}

	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" {
		return redirectWithError(c, "/groups/new", FormErrorOther)
	}
	if isReservedName(form.Name) {
		return redirectWithError(c, "/groups/new", FormErrorNameReserved)
	}
	if taken, err := handler.repos.Groups.ExistsName(form.Name); err != nil {
		return handler.internalError(c, "check group name", err)
	} else if taken {
		return redirectWithError(c, "/groups/new", FormErrorNameTaken)
	}

	ownerID, err := strconv.ParseUint(form.OwnerID, 10, 64)
	if err != nil {
		return redirectWithError(c, "/groups/new", FormErrorOther)
	}
	if _, err := handler.repos.Users.FindByID(uint(ownerID)); err != nil {
		if db.IsNotFound(err) {
			return redirectWithError(c, "/groups/new", FormErrorOther)
		}
		return handler.internalError(c, "look up group owner", err)
	}

	group := models.Group{Name: form.Name, OwnerID: uint(ownerID)}
	if location := strings.TrimSpace(form.Location); location != "" {
		group.Location = &location
	}
	if err := handler.repos.Groups.Create(&group); err != nil {
		if db.IsUniqueViolation(err) {
			return redirectWithError(c, "/groups/new", FormErrorNameTaken)
		}
		return handler.internalError(c, "create group", err)
	}
	if err := handler.repos.Groups.AddMember(group.ID, group.OwnerID); err != nil {
		return handler.internalError(c, "enroll group owner", err)
	}

	handler.audit.Record(actor.ID, "created group %d (%q)", group.ID, group.Name)
	return redirect(c, fmt.Sprintf("/groups/%d", group.ID))
}

// ShowGroup renders a group page. Visible to the group's own members,
// its owner, and any mentor or admin.
func (handler *Handler) ShowGroup(c *fiber.Ctx) error {
	group, statusErr := handler.loadGroupParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if !actor.IsMentor() && actor.ID != group.OwnerID {
		member, err := handler.repos.Groups.IsMember(group.ID, actor.ID)
		if err != nil {
			return handler.internalError(c, "check group visibility", err)
		}
		if !member {
			return fiber.ErrForbidden
		}
	}

	members, err := handler.repos.Groups.Members(group.ID)
	if err != nil {
		return handler.internalError(c, "load group members", err)
	}
	meetings, err := handler.repos.Meetings.ListForGroup(group.ID)
	if err != nil {
		return handler.internalError(c, "load group meetings", err)
	}

	response := fiber.Map{
		"group":    group,
		"members":  members,
		"meetings": meetings,
	}
	if formError, ok := ParseFormError(c.Query("e")); ok {
		response["error"] = formError.String()
	}
	return c.JSON(response)
}

func (handler *Handler) DeleteGroup(c *fiber.Ctx) error {
	group, statusErr := handler.loadGroupParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if err := handler.repos.Groups.Delete(group.ID); err != nil {
		return handler.internalError(c, "delete group", err)
	}

	handler.audit.Record(actor.ID, "deleted group %d (%q)", group.ID, group.Name)
	return redirect(c, "/groups")
}

// AddGroupMember enrolls a user. Only the group owner or an admin may
// change the roster.
func (handler *Handler) AddGroupMember(c *fiber.Ctx) error {
	group, statusErr := handler.loadGroupParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if !actor.IsAdmin() && actor.ID != group.OwnerID {
		return fiber.ErrForbidden
	}

	var form groupMemberForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithError(c, fmt.Sprintf("/groups/%d", group.ID), FormErrorOther)
	}
	userID, err := strconv.ParseUint(form.UserID, 10, 64)
	if err != nil {
		return redirectWithError(c, fmt.Sprintf("/groups/%d", group.ID), FormErrorOther)
	}
	if _, err := handler.repos.Users.FindByID(uint(userID)); err != nil {
		if db.IsNotFound(err) {
			return redirectWithError(c, fmt.Sprintf("/groups/%d", group.ID), FormErrorOther)
		}
		return handler.internalError(c, "look up new member", err)
	}

	if err := handler.repos.Groups.AddMember(group.ID, uint(userID)); err != nil && !db.IsUniqueViolation(err) {
		return handler.internalError(c, "add group member", err)
	}
	return redirect(c, fmt.Sprintf("/groups/%d", group.ID))
}

func (handler *Handler) RemoveGroupMember(c *fiber.Ctx) error {
	group, statusErr := handler.loadGroupParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if !actor.IsAdmin() && actor.ID != group.OwnerID {
		return fiber.ErrForbidden
	}

	userID, err := strconv.ParseUint(c.Params("uid"), 10, 64)
	if err != nil {
		return fiber.ErrNotFound
	}
	if err := handler.repos.Groups.RemoveMember(group.ID, uint(userID)); err != nil {
		return handler.internalError(c, "remove group member", err)
	}
	return redirect(c, fmt.Sprintf("/groups/%d", group.ID))
}

// CreateMeeting records a meeting and mints its attendance code. Mentors
// may do this for any group; otherwise the actor must own the group or
// belong to it.
func (handler *Handler) CreateMeeting(c *fiber.Ctx) error {
	group, statusErr := handler.loadGroupParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if !actor.IsMentor() && actor.ID != group.OwnerID {
		member, err := handler.repos.Groups.IsMember(group.ID, actor.ID)
		if err != nil {
			return handler.internalError(c, "check meeting permission", err)
		}
		if !member {
			return fiber.ErrForbidden
		}
	}

	groupPath := fmt.Sprintf("/groups/%d", group.ID)
	var form meetingForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithError(c, groupPath, FormErrorInvalidDate)
	}
	happenedAt, err := time.ParseInLocation(datetimeLocalLayout, form.HappenedAt, time.Local)
	if err != nil {
		return redirectWithError(c, groupPath, FormErrorInvalidDate)
	}

	var meeting models.Meeting
	if err := handler.mintAndInsert(func(code string) error {
		meeting = models.Meeting{
			HappenedAt: happenedAt,
			Code:       code,
			GroupID:    group.ID,
			HostedBy:   actor.ID,
		}
		return handler.repos.Meetings.Create(&meeting)
	}); err != nil {
		return handler.internalError(c, "create meeting", err)
	}

	handler.audit.Record(actor.ID, "generated code %s for meeting %d of group %d", meeting.Code, meeting.ID, group.ID)
	return redirect(c, groupPath)
}

func (handler *Handler) ShowMeeting(c *fiber.Ctx) error {
	group, statusErr := handler.loadGroupParam(c)
	if statusErr != nil {
		return statusErr
	}

	meetingID, err := strconv.ParseUint(c.Params("mid"), 10, 64)
	if err != nil {
		return fiber.ErrNotFound
	}
	meeting, lookupErr := handler.repos.Meetings.FindByID(uint(meetingID))
	if lookupErr != nil {
		if db.IsNotFound(lookupErr) {
			return fiber.ErrNotFound
		}
		return handler.internalError(c, "load meeting", lookupErr)
	}
	if meeting.GroupID != group.ID {
		return fiber.ErrNotFound
	}

	return c.JSON(fiber.Map{"group": group, "meeting": meeting})
}

// DeleteMeeting removes a meeting and its attendances. Same permission
// as changing the roster.
func (handler *Handler) DeleteMeeting(c *fiber.Ctx) error {
	group, statusErr := handler.loadGroupParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if !actor.IsAdmin() && actor.ID != group.OwnerID {
		return fiber.ErrForbidden
	}

	meetingID, err := strconv.ParseUint(c.Params("mid"), 10, 64)
	if err != nil {
		return fiber.ErrNotFound
	}
	meeting, lookupErr := handler.repos.Meetings.FindByID(uint(meetingID))
	if lookupErr != nil {
		if db.IsNotFound(lookupErr) {
			return fiber.ErrNotFound
		}
		return handler.internalError(c, "load meeting", lookupErr)
	}
	if meeting.GroupID != group.ID {
		return fiber.ErrNotFound
	}

	if err := handler.repos.Meetings.Delete(meeting.ID); err != nil {
		return handler.internalError(c, "delete meeting", err)
	}

	handler.audit.Record(actor.ID, "deleted meeting %d of group %d", meeting.ID, group.ID)
	return redirect(c, fmt.Sprintf("/groups/%d", group.ID))
}

func (handler *Handler) loadGroupParam(c *fiber.Ctx) (models.Group, error) {
	groupID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return models.Group{}, fiber.ErrNotFound
	}

	group, lookupErr := handler.repos.Groups.FindByID(uint(groupID))
	if lookupErr != nil {
		if db.IsNotFound(lookupErr) {
			return models.Group{}, fiber.ErrNotFound
		}
		return models.Group{}, handler.internalError(c, "load group", lookupErr)
	}
	return group, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package template

import (
	"maps"
	"slices"
)

// Keys of every response the bot emits.
const (
	KeyRoll                   = "roll"
	KeyTooMuchCount           = "too_much_count"
	KeyTooMuchSize            = "too_much_size"
	KeyRiskCheck              = "rc"
	KeyBadUser                = "bad_user"
	KeyBadParams              = "bad_params"
	KeyBadName                = "bad_name"
	KeyPermissionDenied       = "permission_denied"
	KeyGroupNameChanged       = "group_name_changed"
	KeyGlobalNameChanged      = "global_name_changed"
	KeyUserNotFound           = "user_not_found"
	KeyGroupUserProfile       = "group_user_profile"
	KeyGlobalUserProfile      = "global_user_profile"
	KeyWelcomeMessageDemo     = "welcome_message_demo"
	KeyWelcomeMessageNotFound = "welcome_message_not_found"
	KeyWelcomeMessageSet      = "welcome_message_set"
	KeyGroupAllowSet          = "group_allow_set"
	KeyLeaveGroup             = "leave_group"
	KeyGroupOnly              = "group_only"
	KeyTemplateSet            = "template_set"
	KeyTemplateCleared        = "template_cleared"
)

const reasonClause = "{{#reason}}because of {{&reason}} {{/reason}}"

var builtins = map[string]string{
	KeyRoll: "{{&name}} " + reasonClause + "rolled {{&count}}d{{&size}} and got {{&result}}." +
		"{{#formula}}\n{{&formula}}{{/formula}}",
	KeyTooMuchCount: "{{&name}} " + reasonClause + "rolled {{&count}}d{{&size}}.\n" +
		"The dice scattered across the floor and could not be found.",
	KeyTooMuchSize: "{{&name}} " + reasonClause + "rolled {{&count}}d{{&size}}.\n" +
		"That is not a die, that is a ball.",
	KeyRiskCheck: "{{&name}} " + reasonClause + "checked against {{&maximumValue}} and drew {{&result}}: " +
		"{{#success}}success{{/success}}{{^success}}failure{{/success}}.",
	KeyBadUser:                "You have been banned{{#reason}}: {{&reason}}{{/reason}}",
	KeyBadParams:              "Invalid parameters.",
	KeyBadName:                "Invalid name \"{{&name}}\": names must be 1 to {{&max}} characters.",
	KeyPermissionDenied:       "Permission denied: {{&action}}.",
	KeyGroupNameChanged:       "Your name in this group is now {{&name}}.",
	KeyGlobalNameChanged:      "Your name is now {{&name}}.",
	KeyUserNotFound:           "No user matches {{&field}}.",
	KeyGroupUserProfile:       "{{&displayName}} ({{&user.id}}) in group {{&group.id}}{{#banReason}}\nBanned: {{&banReason}}{{/banReason}}",
	KeyGlobalUserProfile:      "{{&name}} ({{&id}})\nPermissions: {{&permissions}}{{#banReason}}\nBanned: {{&banReason}}{{/banReason}}",
	KeyWelcomeMessageDemo:     "Welcome message:\n{{&message}}\n\nPreview:\n{{&demo}}",
	KeyWelcomeMessageNotFound: "This group has no welcome message.",
	KeyWelcomeMessageSet:      "Welcome message set:\n{{&message}}",
	KeyGroupAllowSet:          "Join policy for group {{&groupId}} set to {{&value}}.",
	KeyLeaveGroup:             "Leaving group {{&groupId}}.",
	KeyGroupOnly:              "This command only works inside a group.",
	KeyTemplateSet:            "Template {{&key}} set ({{&scope}}):\n{{&content}}",
	KeyTemplateCleared:        "Template {{&key}} cleared ({{&scope}}).",
}

// Registry is the read-only table of built-in templates.
type Registry struct {
	defaults map[string]string
}

var builtin = &Registry{defaults: builtins}

// Builtin returns the process-wide registry of built-in templates.
func Builtin() *Registry { return builtin }

// NewRegistry returns a registry over a copy of defaults.
func NewRegistry(defaults map[string]string) *Registry {
	return &Registry{defaults: maps.Clone(defaults)}
}

// Default returns the built-in content for key.
func (r *Registry) Default(key string) (string, bool) {
	content, ok := r.defaults[key]
	return content, ok
}

// Has reports whether key is a known template key.
func (r *Registry) Has(key string) bool {
	_, ok := r.defaults[key]
	return ok
}

// Keys returns every key in sorted order.
func (r *Registry) Keys() []string {
	return slices.Sorted(maps.Keys(r.defaults))
}

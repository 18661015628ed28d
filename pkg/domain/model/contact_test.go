package model_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

func TestGroupByPriority(t *testing.T) {
	contacts := []*model.Contact{
		{ID: "c1", Priority: types.PriorityMedium},
		{ID: "c2", Priority: types.PriorityUrgent},
		{ID: "c3", Priority: types.Priority("critical")},
		{ID: "c4", Priority: types.PriorityUrgent},
	}

	groups := model.GroupByPriority(contacts)
	gt.Array(t, groups).Length(3)

	gt.Value(t, groups[0].Priority).Equal(types.PriorityUrgent)
	gt.Value(t, groups[1].Priority).Equal(types.PriorityHigh)
	gt.Value(t, groups[2].Priority).Equal(types.PriorityMedium)

	gt.Array(t, groups[0].Contacts).Length(3)
	gt.Value(t, groups[0].Contacts[0].ID).Equal(model.ContactID("c2"))
	gt.Value(t, groups[0].Contacts[1].ID).Equal(model.ContactID("c3"))
	gt.Value(t, groups[0].Contacts[2].ID).Equal(model.ContactID("c4"))

	gt.Array(t, groups[1].Contacts).Length(0)
	gt.Array(t, groups[2].Contacts).Length(1)
}

func TestGroupByPriority_Empty(t *testing.T) {
	groups := model.GroupByPriority(nil)
	gt.Array(t, groups).Length(3)
	for _, g := range groups {
		gt.Bool(t, g.Contacts != nil).True()
		gt.Array(t, g.Contacts).Length(0)
	}

	raw, err := json.Marshal(groups[0])
	gt.NoError(t, err).Required()
	gt.String(t, string(raw)).Contains(`"Contacts":[]`)
}

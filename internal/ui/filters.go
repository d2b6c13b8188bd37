package ui

import "github.com/jw6ventures/callhistory/internal/calls"

type filterOption struct {
	Value    string
	Label    string
	Selected bool
}

type filterMenu struct {
	Field   string
	Trigger string
	Options []filterOption
}

var callTypeLabels = []filterOption{
	{Value: calls.FilterAll, Label: "All Calls"},
	{Value: string(calls.CallTypeMissed), Label: "Missed Calls"},
	{Value: string(calls.CallTypeAnswered), Label: "Answered Calls"},
	{Value: string(calls.CallTypeVoicemail), Label: "Voicemails"},
}

var directionLabels = []filterOption{
	{Value: calls.FilterAll, Label: "All Directions"},
	{Value: string(calls.DirectionInbound), Label: "Incoming"},
	{Value: string(calls.DirectionOutbound), Label: "Outgoing"},
}

func filterMenus(f calls.Filters) []filterMenu {
	return []filterMenu{
		newFilterMenu("callType", "Call Type: "+f.CallType, callTypeLabels, f.CallType),
		newFilterMenu("direction", "Direction: "+f.Direction, directionLabels, f.Direction),
	}
}

func newFilterMenu(field, trigger string, labels []filterOption, current string) filterMenu {
	opts := make([]filterOption, len(labels))
	for i, o := range labels {
		o.Selected = o.Value == current
		opts[i] = o
	}
	return filterMenu{Field: field, Trigger: trigger, Options: opts}
}

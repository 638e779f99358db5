// Package script plays pre-authored dialogue on a timer.
package script

import (
	"fmt"
	"sort"
	"time"
)

// Speakers used by the built-in scripts.
const (
	SpeakerUser   = "You"
	SpeakerTwin   = "Twin"
	SpeakerSystem = "Mesh"
)

// Pauses after a line, by who spoke it.
const (
	UserPause = 800 * time.Millisecond
	TwinPause = 2 * time.Second
)

// Line is one message. Delay is the pause since the previous line.
type Line struct {
	Speaker string
	Text    string
	Delay   time.Duration
}

// Script is a finite, ordered list of lines.
type Script struct {
	Name  string
	Title string
	Lines []Line
}

// Duration is the offset of the last line from the start of playback.
func (s Script) Duration() time.Duration {
	var d time.Duration
	for _, l := range s.Lines {
		d += l.Delay
	}
	return d
}

// conversation alternates user and twin turns, pausing after each one as
// long as the speaker's pause.
func conversation(name, title string, turns ...string) Script {
	s := Script{Name: name, Title: title, Lines: make([]Line, 0, len(turns))}
	var pause time.Duration
	for i, text := range turns {
		speaker, next := SpeakerUser, UserPause
		if i%2 == 1 {
			speaker, next = SpeakerTwin, TwinPause
		}
		s.Lines = append(s.Lines, Line{Speaker: speaker, Text: text, Delay: pause})
		pause = next
	}
	return s
}

// TwinStages are the labels of the twin interaction walk-through.
var TwinStages = []string{"Users", "Analyzing", "Shared", "Recommendation"}

// StageInterval is how long each twin stage stays on screen.
const StageInterval = 3 * time.Second

var builtins = map[string]Script{
	"twin-demo": {
		Name:  "twin-demo",
		Title: "Two twins plan an evening",
		Lines: []Line{
			{Speaker: SpeakerSystem, Text: "Users: Sarah likes vegetarian food, waterfront views, cozy ambience and live music."},
			{Speaker: SpeakerSystem, Text: "Users: Alex likes Italian cuisine, outdoor seating, live music and a good wine list.", Delay: time.Second},
			{Speaker: SpeakerSystem, Text: "Analyzing: comparing taste profiles and finding common interests.", Delay: StageInterval},
			{Speaker: SpeakerSystem, Text: "Analyzing: calculating compatibility scores.", Delay: time.Second},
			{Speaker: SpeakerSystem, Text: "Shared: live music 95%, relaxed atmosphere 85%, outdoor or waterfront 80%.", Delay: StageInterval},
			{Speaker: SpeakerTwin, Text: "Recommendation: Marea Coastal Kitchen, a 92% match. Waterfront Italian with live jazz, vegetarian options and an outdoor terrace.", Delay: StageInterval},
		},
	},
	"check-in": conversation("check-in", "Ask your twin",
		"Where did I spend most time this month?",
		"Most of your relaxing visits are at cafés near water or parks on weekends. You visited Café Luna 8 times and Beach Park 6 times.",
		"Find me a dinner spot I'd love",
		"Based on your preferences, I recommend Bar Kindred. It matches your love for calm ambience, vegetarian cuisine and waterfront views.",
	),
	"relaxation": conversation("relaxation", "Finding relaxation",
		"Where do I feel most relaxed?",
		"Based on your visits, you feel most relaxed at waterfront locations like Ocean Beach and Golden Gate Park, especially in the late afternoon.",
		"Why do you think that is?",
		"Your notes often say \"recharged\" and \"clear-headed\" after these visits, and they tend to follow stressful work periods.",
		"Are there any new spots like this I haven't tried?",
		"Try Lands End Trail. Waterfront views, quiet paths and fewer people than Ocean Beach. Best between 5 and 6 PM.",
	),
	"group-plan": conversation("group-plan", "Planning with a friend",
		"I want to plan coffee with Sarah this weekend. Any suggestions?",
		"Sightglass Coffee in SoMa. You both favor that neighborhood and it has the outdoor seating you both prefer.",
		"What time works best?",
		"Saturday at 10:30 AM fits both your weekend patterns.",
		"Anything nearby we might enjoy after?",
		"Walk to the Ferry Building, five minutes away. Sarah's notes mention the farmers market on Saturdays.",
	),
}

// Lookup returns the built-in script called name.
func Lookup(name string) (Script, error) {
	s, ok := builtins[name]
	if !ok {
		return Script{}, fmt.Errorf("unknown script %q (have %v)", name, Names())
	}
	return s, nil
}

// Names lists the built-in scripts in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

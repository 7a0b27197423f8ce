// Package content holds the built-in card and reading libraries. The tables
// are opaque to the engine: ordered sequences handed to each policy at
// construction time.
package content

import "github.com/astrelia/tarotbot/pkg/fortune"

// Deck is the daily-card library.
var Deck = []fortune.Card{
	{Name: "The Fool", Text: "A fresh road opens under your feet. Step onto it lightly: what looks like a risk today is an invitation in disguise."},
	{Name: "The Magician", Text: "Everything you need is already on the table. Name what you want out loud and start arranging the pieces."},
	{Name: "The High Priestess", Text: "The answer will not come from asking around. Sit with the question and let your own quiet knowing speak first."},
	{Name: "The Empress", Text: "Something you planted long ago is ready to grow. Tend to it gently instead of pulling at the stem."},
	{Name: "The Emperor", Text: "Structure is your friend today. Draw the boundary, write the plan, and watch how much calmer everything becomes."},
	{Name: "The Lovers", Text: "A choice of the heart is near. Pick the option you would defend in front of someone you respect."},
	{Name: "The Chariot", Text: "Momentum favors you. Hold the reins firmly, point yourself at one goal, and do not split your attention."},
	{Name: "Strength", Text: "The day bends to patience, not force. What resists you now will soften if you stay steady and kind."},
	{Name: "The Hermit", Text: "Step back from the noise. An hour alone will show you what a week of conversations could not."},
	{Name: "Wheel of Fortune", Text: "The wheel is turning in your favor. Notice the small coincidence today: it is a door, not an accident."},
	{Name: "Justice", Text: "An old imbalance wants settling. Say the honest thing plainly and let the scales do the rest."},
	{Name: "The Star", Text: "After a hard stretch, the sky clears. Allow yourself optimism: it is information, not naivety."},
	{Name: "The Moon", Text: "Not everything is as it appears. Postpone the big conclusion until the fog lifts, and trust your unease."},
	{Name: "The Sun", Text: "A day of plain, uncomplicated good. Share it: warmth multiplies when it leaves your hands."},
	{Name: "The World", Text: "A cycle completes. Close it properly, thank it, and notice the new one already beginning at its edge."},
}

// Spreads is the mini-spread library.
var Spreads = fortune.Library{
	"Past: a weight you carried longer than it deserved. Present: hands finally free. Near future: use them to build, not to grip.",
	"Past: a lesson paid in full. Present: a narrow bridge you can cross if you do not look down. Near future: solid ground and a new companion.",
	"Past: words left unsaid. Present: a second chance circling back. Near future: say it simply; the rest arranges itself.",
	"Past: scattered effort. Present: a single thread worth pulling. Near future: follow that one thread and ignore the rest of the tangle.",
	"Past: someone else's map. Present: the moment you fold it away. Near future: a path drawn in your own hand.",
	"Past: a door closed for your protection. Present: quiet growth behind the scenes. Near future: an opening you will recognize immediately.",
	"Past: borrowed worries. Present: the discovery that most were never yours. Near future: lightness, and room for a real concern handled well.",
}

// CompatReadings is the compatibility reading library.
var CompatReadings = fortune.Library{
	"Your energies meet like two rivers: turbulence at the joining, then a stronger current than either had alone. Give the turbulence time.",
	"One of you carries fire, the other carries ground. Together that is a hearth, not a wildfire, if you both feed it deliberately.",
	"The cards show mirrored wounds and mirrored hopes. Healing happens here in parallel: what you forgive in them, you release in yourself.",
	"There is an old-soul familiarity between you. Do not let comfort become silence; this bond grows through spoken things.",
	"Your union reads as a teacher card: each of you holds a lesson the other has postponed. Expect friction exactly where the growth is.",
	"Two strong tides under one moon. The pull is real; the work is rhythm. Learn each other's timing and the rest is surprisingly easy.",
}

// YesNoAnswers is the yes/no answer library.
var YesNoAnswers = fortune.Library{
	"Yes. The cards are unusually unanimous about it.",
	"Yes, but not on today's terms. Let the conditions ripen.",
	"Yes, if you act before doubt talks you out of it.",
	"No. Something better is holding the door closed.",
	"No, not yet. The question is right; the timing is early.",
	"No, and deep down you already knew. Trust that knowing.",
	"The cards lean yes, provided you ask for help instead of carrying it alone.",
	"The cards lean no; revisit the question when the moon turns.",
}

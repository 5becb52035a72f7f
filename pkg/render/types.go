package render

// Scene is a plan laid out in screen space, ready to be drawn. Coordinates
// are SVG user units with y growing downwards.
type Scene struct {
	Width  int
	Height int
	Title  string

	Zones      []Zone2D
	Pipes      []Pipe2D
	Sources    []Mark2D
	Valves     []Mark2D
	Sprinklers []Sprinkler2D

	// MetersPerUnit is the ground length of one screen unit at the plan's
	// mean latitude.
	MetersPerUnit float64
}

// Zone2D is one irrigation zone outline with its label.
type Zone2D struct {
	ID    int
	Label string
	X     []int
	Y     []int
	// LabelX and LabelY place the label at the centroid.
	LabelX int
	LabelY int
}

// Pipe2D is one straight pipe segment.
type Pipe2D struct {
	ID     string
	X1, Y1 int
	X2, Y2 int
}

// Mark2D is a point feature such as a water source or a valve.
type Mark2D struct {
	ID   string
	X, Y int
}

// Sprinkler2D is a sprinkler head with its throw circle.
type Sprinkler2D struct {
	ID     string
	X, Y   int
	Radius int
}

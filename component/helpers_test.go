package component

type greeter interface {
	Greet(name string) string
}

type titier interface {
	Titi() string
}

type helloService struct {
	prefix string
}

func (h *helloService) Greet(name string) string { return h.prefix + "Hello " + name + " !" }

type totoService struct {
	origin string
}

func (t *totoService) Titi() string { return "titi(" + t.origin + ")" }

// both implements greeter and titier.
type both struct{}

func (*both) Greet(name string) string { return "both " + name }
func (*both) Titi() string             { return "titi(both)" }

// Package services declares the capabilities the example libraries provide.
// Consumers look them up with component.Find[services.HelloService] and
// friends; they never see the implementing types.
package services

// HelloService greets people.
type HelloService interface {
	Greet(name string) string
	// Count returns how many greetings were made so far.
	Count() int
}

// TotoService is the second capability of the example libraries.
type TotoService interface {
	Titi() string
}

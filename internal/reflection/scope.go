package reflection

import "strings"

// Scope is the lexical context of the code asking for a reflection.
type Scope interface {
	// Namespace is "" in the global namespace.
	Namespace() string
	IsInClass() bool
	ClassReflection() *ClassReflection
	CanCallMethod(method ClassMemberReflection) bool
	CanAccessProperty(property ClassMemberReflection) bool
}

// BasicScope applies PHP visibility rules for code inside an optional class.
type BasicScope struct {
	namespace string
	class     *ClassReflection
}

// NewScope returns a scope for code in namespace, inside class when class is
// not nil.
func NewScope(namespace string, class *ClassReflection) *BasicScope {
	return &BasicScope{namespace: strings.Trim(namespace, "\\"), class: class}
}

func (s *BasicScope) Namespace() string                 { return s.namespace }
func (s *BasicScope) IsInClass() bool                   { return s.class != nil }
func (s *BasicScope) ClassReflection() *ClassReflection { return s.class }

func (s *BasicScope) CanCallMethod(method ClassMemberReflection) bool {
	return s.canAccess(method)
}

func (s *BasicScope) CanAccessProperty(property ClassMemberReflection) bool {
	return s.canAccess(property)
}

func (s *BasicScope) canAccess(member ClassMemberReflection) bool {
	if member.IsPublic() {
		return true
	}
	if s.class == nil {
		return false
	}
	declaring := member.DeclaringClass()
	if declaring == nil {
		return false
	}
	if strings.EqualFold(s.class.Name(), declaring.Name()) {
		return true
	}
	if member.IsPrivate() {
		return false
	}
	// protected members are visible along the inheritance line in both directions
	return s.class.IsSubclassOf(declaring.Name()) || declaring.IsSubclassOf(s.class.Name())
}

package reflection

import "github.com/shinyvision/phpreflect/internal/source"

// ClassConstantReflection is a class constant or enum case.
type ClassConstantReflection struct {
	declaring *ClassReflection
	native    *source.Constant
}

func (c *ClassConstantReflection) Name() string                     { return c.native.Name }
func (c *ClassConstantReflection) Value() string                    { return c.native.Value }
func (c *ClassConstantReflection) DeclaringClass() *ClassReflection { return c.declaring }
func (c *ClassConstantReflection) IsStatic() bool                   { return true }
func (c *ClassConstantReflection) IsPrivate() bool                  { return c.native.IsPrivate() }
func (c *ClassConstantReflection) IsPublic() bool                   { return c.native.IsPublic() }

func (c *ClassConstantReflection) DocComment() string { return c.native.DocComment }

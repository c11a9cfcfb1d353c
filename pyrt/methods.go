package pyrt

// MethodKind tells which of the MethodDefType fields is populated.
type MethodKind uint8

const (
	KindMethod MethodKind = iota
	KindClassMethod
	KindStaticMethod
	KindGetter
	KindSetter
	KindClassAttribute
)

var methodKindNames = [...]string{
	KindMethod:         "method",
	KindClassMethod:    "classmethod",
	KindStaticMethod:   "staticmethod",
	KindGetter:         "getter",
	KindSetter:         "setter",
	KindClassAttribute: "classattr",
}

func (k MethodKind) String() string {
	if int(k) < len(methodKindNames) {
		return methodKindNames[k]
	}
	return "unknown"
}

// CFunction is the calling convention of every callable method entry. For
// class methods self is the type object, for static methods it is nil.
type CFunction func(self Object, args []Object, kwargs map[string]Object) (Object, error)

// MethodDef describes a callable entry of the method table.
type MethodDef struct {
	Name string
	Doc  string
	Call CFunction
}

// GetterDef describes a property read accessor.
type GetterDef struct {
	Name string
	Doc  string
	Get  func(self Object) (Object, error)
}

// SetterDef describes a property write accessor.
type SetterDef struct {
	Name string
	Doc  string
	Set  func(self, value Object) error
}

// ClassAttributeFactory builds the value of a class attribute when the type
// object is created.
type ClassAttributeFactory func() Object

// ClassAttributeDef is a zero-argument accessor exposed as a class attribute.
type ClassAttributeDef struct {
	Name    string
	Factory ClassAttributeFactory
}

// MethodDefType is one entry of a type's method table.
type MethodDefType struct {
	Kind           MethodKind
	Method         *MethodDef
	Getter         *GetterDef
	Setter         *SetterDef
	ClassAttribute *ClassAttributeDef
}

func Method(def MethodDef) MethodDefType {
	return MethodDefType{Kind: KindMethod, Method: &def}
}

func ClassMethod(def MethodDef) MethodDefType {
	return MethodDefType{Kind: KindClassMethod, Method: &def}
}

func StaticMethod(def MethodDef) MethodDefType {
	return MethodDefType{Kind: KindStaticMethod, Method: &def}
}

func Getter(def GetterDef) MethodDefType {
	return MethodDefType{Kind: KindGetter, Getter: &def}
}

func Setter(def SetterDef) MethodDefType {
	return MethodDefType{Kind: KindSetter, Setter: &def}
}

func ClassAttribute(def ClassAttributeDef) MethodDefType {
	return MethodDefType{Kind: KindClassAttribute, ClassAttribute: &def}
}

// Name returns the external name of the entry.
func (m MethodDefType) Name() string {
	switch m.Kind {
	case KindMethod, KindClassMethod, KindStaticMethod:
		return m.Method.Name
	case KindGetter:
		return m.Getter.Name
	case KindSetter:
		return m.Setter.Name
	case KindClassAttribute:
		return m.ClassAttribute.Name
	}
	return ""
}

package component

// Name is the scene node name an entity was built from.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()

type CameraTag struct{}

var CameraTagComponent = NewComponent[CameraTag]()

type PromptTag struct{}

var PromptTagComponent = NewComponent[PromptTag]()

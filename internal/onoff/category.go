package onoff

import (
	"github.com/nerrad567/gray-logic-onoff/internal/configurable"
	"github.com/nerrad567/gray-logic-onoff/internal/resource"
)

// CategoryName is the parent category of the on/off class.
const CategoryName = "onoff_devices"

const categoryIcon = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">` +
	`<rect x="8" y="30" width="84" height="40" rx="20" fill="none" stroke="currentColor" stroke-width="6"/>` +
	`<circle cx="70" cy="50" r="14" fill="currentColor"/>` +
	`</svg>`

// Category returns the category on/off devices are listed under.
func Category() configurable.Category {
	return configurable.Category{
		Name:        CategoryName,
		Title:       resource.OnOffDevicesTitle,
		Description: resource.OnOffDevicesDescription,
		Icon:        categoryIcon,
	}
}

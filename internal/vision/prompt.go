package vision

import (
	"fmt"
	"strings"
)

const (
	fallbackRoom      = "room"
	fallbackStyle     = "modern style"
	fallbackFurniture = "modern furniture"
)

var roomDescriptions = map[RoomType]string{
	RoomLivingRoom: "living room",
	RoomBedroom:    "bedroom",
	RoomDiningRoom: "dining room",
	RoomOffice:     "home office",
	RoomKitchen:    "kitchen",
}

var styleDescriptions = map[DesignStyle]string{
	StyleModern:       "modern style with clean lines and contemporary aesthetic",
	StyleMinimalist:   "minimalist style with sparse, uncluttered design",
	StyleScandinavian: "Scandinavian style with light woods and cozy feel",
	StyleIndustrial:   "industrial style with exposed materials and metal accents",
	StyleTraditional:  "traditional style with classic elegance",
	StyleBohemian:     "bohemian style with eclectic textures",
}

// DescribeRoom returns the prompt phrase for a room type.
func DescribeRoom(roomType RoomType) string {
	if desc, ok := roomDescriptions[roomType]; ok {
		return desc
	}
	return fallbackRoom
}

// DescribeStyle returns the prompt phrase for a design style.
func DescribeStyle(style DesignStyle) string {
	if desc, ok := styleDescriptions[style]; ok {
		return desc
	}
	return fallbackStyle
}

// FurnitureList joins furniture names for a prompt.
func FurnitureList(names []string) string {
	if len(names) == 0 {
		return fallbackFurniture
	}
	return strings.Join(names, ", ")
}

// BuildPrompt produces the text-to-image prompt used when no room pixels are
// sent to the model.
func BuildPrompt(roomType RoomType, style DesignStyle, furnitureNames []string) string {
	roomDesc := DescribeRoom(roomType)
	styleDesc := DescribeStyle(style)

	return fmt.Sprintf(`Generate a photorealistic interior design photograph of a %s.

FURNITURE TO INCLUDE (place these items naturally in the room):
%s

DESIGN STYLE: %s

REQUIREMENTS:
- Create a completely photorealistic image, like a professional real estate or interior design photo
- Position furniture in natural, logical locations
- Include realistic lighting and shadows under all furniture
- The room should feel cohesive and professionally designed
- High quality, sharp details
- Natural color palette appropriate for the %s style

Generate the interior design image now.`, roomDesc, FurnitureList(furnitureNames), styleDesc, styleDesc)
}

// BuildEditPrompt produces the instruction for a multi-image edit. Image 1 is
// always the room; attached[i] is sent as image i+2. Unattached items are
// described by name only.
func BuildEditPrompt(roomType RoomType, style DesignStyle, attached, unattached []FurnitureReference) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Edit image 1, a photograph of a %s, so that it shows the furniture listed below placed naturally in the room.\n\n", DescribeRoom(roomType))

	b.WriteString("IMAGES:\n")
	b.WriteString("- image 1: the room to edit.\n")
	for i, item := range attached {
		fmt.Fprintf(&b, "- image %d: %s\n", i+2, describeItem(item))
	}

	if len(unattached) > 0 {
		b.WriteString("\nADDITIONAL FURNITURE (no reference image, follow the description):\n")
		for _, item := range unattached {
			fmt.Fprintf(&b, "- %s\n", describeItem(item))
		}
	}
	if len(attached) == 0 && len(unattached) == 0 {
		fmt.Fprintf(&b, "\nFURNITURE TO ADD: %s\n", fallbackFurniture)
	}

	fmt.Fprintf(&b, `
RULES:
- Preserve all non-furniture structure of image 1 exactly: walls, floor, ceiling, windows, doors, lighting and camera perspective.
- Substitute only the furniture listed above; match each reference image's shape, color, material and proportions.
- Scale every item to the room and rest it on the floor with realistic contact shadows.
- Arrange the furniture in %s.
- Output a single photorealistic photograph, not an illustration or 3D render.`, DescribeStyle(style))

	return b.String()
}

func describeItem(item FurnitureReference) string {
	name := strings.TrimSpace(item.Name)
	if name == "" {
		name = "furniture item"
	}
	if desc := strings.TrimSpace(item.Description); desc != "" {
		return fmt.Sprintf("%s (%s)", name, desc)
	}
	return name
}

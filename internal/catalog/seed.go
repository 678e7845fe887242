package catalog

import "storefront-service/internal/domain"

// SeedRecords is the built-in jewelry catalog served by the static source. It
// is kept in the loose shape of the storefront's original static array.
func SeedRecords() []domain.RawRecord {
	return []domain.RawRecord{
		{
			"id": 1.0, "name": "Golden Mesh Ring", "price": 900.0, "category": "Bracelets", "inStock": true, "rating": 4.5,
			"shortDescription": "Luxurious mesh design gold plated ring",
			"longDescription":  "This stunning mesh ring features an intricate design that catches the light from every angle. Gold plated and adjustable.",
			"images": []any{
				"https://images.unsplash.com/photo-1611652022419-a9419f74343d?w=800&q=80",
				"https://images.unsplash.com/photo-1599643478518-a784e5dc4c8f?w=800&q=80",
			},
		},
		{
			"id": 2.0, "name": "Heart Drop Earrings", "price": 1530.0, "category": "Earrings", "inStock": true, "rating": 4.9,
			"shortDescription": "Double heart gold statement earrings",
			"longDescription":  "Bold and beautiful, these double heart drop earrings are the perfect statement piece for any outfit. Lightweight and comfortable.",
			"images": []any{
				"https://images.unsplash.com/photo-1535632066927-ab7c9ab60908?w=800&q=80",
				"https://images.unsplash.com/photo-1630019852942-f89202989a51?w=800&q=80",
			},
		},
		{
			"id": 3.0, "name": "Snake Chain Necklace", "price": 1130.0, "category": "Necklaces", "inStock": true, "rating": 4.2,
			"shortDescription": "Flat herringbone gold snake chain",
			"longDescription":  "A classic essential. This herringbone snake chain lays flat against the skin, creating a liquid gold effect. Perfect for layering.",
			"images": []any{
				"https://images.unsplash.com/photo-1599643478518-a784e5dc4c8f?w=800&q=80",
				"https://images.unsplash.com/photo-1611591437281-460bfbe1220a?w=800&q=80",
			},
		},
		{
			"id": 4.0, "name": "Chain Link Cuff", "price": 830.0, "category": "Anklets", "inStock": false, "rating": 3.8,
			"shortDescription": "Minimalist chain link adjustable cuff",
			"longDescription":  "Modern and minimalist, this chain link cuff adds a touch of edge to your everyday look. Adjustable fit.",
			"images": []any{
				"https://images.unsplash.com/photo-1611591437281-460bfbe1220a?w=800&q=80",
				"https://images.unsplash.com/photo-1617038260897-41a1f14a8ca0?w=800&q=80",
			},
		},
		{
			"id": 5.0, "name": "Pearl Drop Earrings", "price": 1200.0, "category": "Earrings", "inStock": true, "rating": 5.0,
			"shortDescription": "Classic freshwater pearl drop earrings",
			"longDescription":  "Timeless elegance. These freshwater pearl drop earrings feature a delicate gold setting.",
			"images":           []any{"https://images.unsplash.com/photo-1535632066927-ab7c9ab60908?w=800&q=80"},
		},
		{
			"id": 6.0, "name": "Layered Gold Necklace", "price": 1450.0, "category": "Necklaces", "inStock": true, "rating": 4.7,
			"shortDescription": "Pre-layered double chain necklace",
			"longDescription":  "Get the layered look instantly with this double chain necklace set. Features two complementary chain styles.",
			"images":           []any{"https://images.unsplash.com/photo-1599643478518-a784e5dc4c8f?w=800&q=80"},
		},
		{
			"id": 7.0, "name": "Charm Bracelet", "price": 950.0, "category": "Bracelets", "inStock": false, "rating": 4.1,
			"shortDescription": "Dainty gold chain with mini charms",
			"longDescription":  "A delicate addition to your wrist stack. This dainty chain features small, light-catching charms.",
			"images":           []any{"https://images.unsplash.com/photo-1611652022419-a9419f74343d?w=800&q=80"},
		},
		{
			"id": 8.0, "name": "Beaded Anklet", "price": 650.0, "category": "Anklets", "inStock": true, "rating": 4.0,
			"shortDescription": "Gold beaded summer anklet",
			"longDescription":  "Summer ready. This beaded anklet features small gold beads on a durable chain.",
			"images":           []any{"https://images.unsplash.com/photo-1617038260897-41a1f14a8ca0?w=800&q=80"},
		},
	}
}

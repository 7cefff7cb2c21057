package domain

// WishListEntry is one favorited comic in the current user's wishlist as
// returned by the API. Some historic responses carried the comic inline,
// others only its ID; ComicID resolves either shape.
type WishListEntry struct {
	ID    int    `json:"id"`
	Comic *Comic `json:"comic,omitempty"`
}

// ComicID returns the favorited comic's identity, falling back to the
// entry's own ID for responses that carried no nested comic. Returns 0
// when neither resolves; callers drop those entries.
func (e WishListEntry) ComicID() int {
	if e.Comic != nil && e.Comic.ID != 0 {
		return e.Comic.ID
	}
	return e.ID
}

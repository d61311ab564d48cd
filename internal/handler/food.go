package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/sakif/foodlist/internal/apperror"
	"github.com/sakif/foodlist/internal/auth"
	"github.com/sakif/foodlist/internal/model"
	"github.com/sakif/foodlist/internal/service"
)

// FoodHandler serves the list and item API.
//
// Every route here sits behind auth.RequireAuth. The handler reads the
// principal from the context once and hands it to the service explicitly;
// ownership itself is decided below, in the service and repository.
type FoodHandler struct {
	food   *service.FoodService
	logger *slog.Logger
}

func NewFoodHandler(food *service.FoodService, logger *slog.Logger) *FoodHandler {
	return &FoodHandler{food: food, logger: logger}
}

// itemResponse is a food item on the wire: is_checked is 0 or 1.
type itemResponse struct {
	ID        int64  `json:"id"`
	FoodName  string `json:"food_name"`
	IsChecked int    `json:"is_checked"`
}

func toItemResponse(item model.FoodItem) itemResponse {
	return itemResponse{
		ID:        item.ID,
		FoodName:  item.FoodName,
		IsChecked: boolToInt(item.Checked),
	}
}

type listWithItemsResponse struct {
	List  model.FoodList `json:"list"`
	Items []itemResponse `json:"items"`
}

// principal returns the authenticated user id. RequireAuth guarantees it
// on every route this handler serves; the 401 is for a miswired router.
func principal(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.InvalidCredentials())
	}
	return id, ok
}

// fail logs unexpected errors and writes the mapped response.
func (h *FoodHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if isInternal(err) {
		h.logger.Error(op+" failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	writeError(w, err)
}

// =========================================================================
// LISTS
// =========================================================================

// HandleLists returns the principal's lists, newest first.
//
// HTTP: GET /api/lists
func (h *FoodHandler) HandleLists(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	lists, err := h.food.ListListsForUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "list lists", err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

type createListRequest struct {
	ListName string `json:"list_name"`
}

// HandleCreateList creates a list for the principal.
//
// HTTP: POST /api/create_list
// Body: {"list_name": "Groceries"}
func (h *FoodHandler) HandleCreateList(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	var req createListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	list, err := h.food.CreateList(r.Context(), userID, req.ListName)
	if err != nil {
		h.fail(w, r, "create list", err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// HandleGetList returns one list if the principal owns it.
//
// HTTP: GET /api/lists/{listId}
func (h *FoodHandler) HandleGetList(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	list, err := h.food.GetList(r.Context(), userID, pathID(r, "listId"))
	if err != nil {
		h.fail(w, r, "get list", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleMyLists returns every list of the principal with its items.
//
// HTTP: GET /api/my_lists
func (h *FoodHandler) HandleMyLists(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	lists, err := h.food.ListListsWithItems(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "my lists", err)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(lists, func(lw model.ListWithItems, _ int) listWithItemsResponse {
		return listWithItemsResponse{
			List:  lw.List,
			Items: lo.Map(lw.Items, func(it model.FoodItem, _ int) itemResponse { return toItemResponse(it) }),
		}
	}))
}

// editListRequest accepts both key spellings older clients send.
type editListRequest struct {
	ListID   idField `json:"list_id"`
	ID       idField `json:"id"`
	Name     string  `json:"name"`
	ListName string  `json:"list_name"`
}

// listID prefers list_id and falls back to id when list_id is absent or 0.
func (req editListRequest) listID() int64 {
	if id := req.ListID.id(); id != 0 {
		return id
	}
	return req.ID.id()
}

func (req editListRequest) name() string {
	if req.Name != "" {
		return req.Name
	}
	return req.ListName
}

// HandleEditList renames a list. The name is checked before ownership.
//
// HTTP: POST /api/edit_list
// Body: {"list_id": 1, "name": "Weekend"}   (or "id", "list_name")
func (h *FoodHandler) HandleEditList(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	var req editListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.food.RenameList(r.Context(), userID, req.listID(), req.name()); err != nil {
		h.fail(w, r, "edit list", err)
		return
	}
	writeOK(w)
}

// HandleDeleteList deletes a list and all of its items.
//
// HTTP: POST /api/delete_list
// Body: {"list_id": 1}   (or "id")
func (h *FoodHandler) HandleDeleteList(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	var req editListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.food.DeleteList(r.Context(), userID, req.listID()); err != nil {
		h.fail(w, r, "delete list", err)
		return
	}
	writeOK(w)
}

// =========================================================================
// ITEMS
// =========================================================================

// HandleListItems returns the items of a list by ascending id.
//
// HTTP: GET /api/list_items/{listId}
func (h *FoodHandler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	items, err := h.food.ListItems(r.Context(), userID, pathID(r, "listId"))
	if err != nil {
		h.fail(w, r, "list items", err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(items, func(it model.FoodItem, _ int) itemResponse { return toItemResponse(it) }))
}

type addItemRequest struct {
	ListID   idField `json:"list_id"`
	FoodName string  `json:"food_name"`
}

// HandleAddItem appends an item to a list.
//
// HTTP: POST /api/add_item
// Body: {"list_id": 1, "food_name": "Milk"}
//
// A missing or non-numeric list_id is a 400. After that ownership is
// checked before the name, so a foreign list is 403 whatever the name.
func (h *FoodHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !req.ListID.present {
		writeError(w, apperror.ValidationFailed("list_id", "list_id required"))
		return
	}
	if !req.ListID.valid {
		writeError(w, apperror.ValidationFailed("list_id", "invalid list_id"))
		return
	}

	item, err := h.food.AddItem(r.Context(), userID, req.ListID.value, req.FoodName)
	if err != nil {
		h.fail(w, r, "add item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(*item))
}

type toggleItemRequest struct {
	ID        idField     `json:"id"`
	IsChecked checkedFlag `json:"is_checked"`
}

// HandleToggleItem sets an item's checked flag.
//
// HTTP: POST /api/toggle_item
// Body: {"id": 7, "is_checked": 1}
func (h *FoodHandler) HandleToggleItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	var req toggleItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.food.ToggleItem(r.Context(), userID, req.ID.id(), bool(req.IsChecked)); err != nil {
		h.fail(w, r, "toggle item", err)
		return
	}
	writeOK(w)
}

type itemRequest struct {
	ID       idField `json:"id"`
	FoodName string  `json:"food_name"`
}

// HandleEditItem renames an item. The name is checked before ownership.
//
// HTTP: POST /api/edit_item
// Body: {"id": 7, "food_name": "Oat milk"}
func (h *FoodHandler) HandleEditItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.food.RenameItem(r.Context(), userID, req.ID.id(), req.FoodName); err != nil {
		h.fail(w, r, "edit item", err)
		return
	}
	writeOK(w)
}

// HandleDeleteItem removes one item.
//
// HTTP: POST /api/delete_item
// Body: {"id": 7}
func (h *FoodHandler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.food.DeleteItem(r.Context(), userID, req.ID.id()); err != nil {
		h.fail(w, r, "delete item", err)
		return
	}
	writeOK(w)
}

// pathID parses a numeric URL parameter. A malformed id is 0, which no
// principal owns, so the guarded call that follows answers 403.
func pathID(r *http.Request, name string) int64 {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

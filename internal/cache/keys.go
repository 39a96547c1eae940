package cache

import "fmt"

// PlansKey ключ списка тарифных планов.
const PlansKey = "plans:all"

// StatusKey ключ краткого состояния учетной записи.
func StatusKey(userID int64) string {
	return fmt.Sprintf("status:%d", userID)
}

// ContentKey ключ элемента каталога.
func ContentKey(id int64) string {
	return fmt.Sprintf("content:%d", id)
}

// Package authz реализует политику доступа к ресурсам трекера.
//
// Политика чистая и без побочных эффектов: решение принимается только по
// уже загруженным данным (идентификатор актора и владелец цели), хранилище
// здесь никогда не трогается.
//
// Принцип сокрытия существования: отказ по владению для конкретной записи
// сообщается как DecisionNotFound, а не как "403", чтобы код ответа не
// подтверждал чужой записи. Исключение — перечисление всех аккаунтов:
// сама коллекция секретом не является, поэтому там честный DecisionForbidden.
package authz

import "github.com/google/uuid"

// Action — действие над сущностью или классом сущностей.
type Action int

const (
	ActionCreate Action = iota
	ActionRead
	ActionUpdate
	ActionDelete
	ActionList
)

// Kind — класс целевой сущности.
type Kind int

const (
	KindMovie Kind = iota
	KindAccount
)

// Target — цель проверки: класс сущности и владелец конкретной записи.
// Для операций над классом (create/list) Owner остаётся uuid.Nil.
type Target struct {
	Kind  Kind
	Owner uuid.UUID
}

// Movie — цель-запись фильма с известным владельцем.
func Movie(owner uuid.UUID) Target { return Target{Kind: KindMovie, Owner: owner} }

// MovieClass — цель-класс фильмов (create/list).
func MovieClass() Target { return Target{Kind: KindMovie} }

// Account — цель-аккаунт; владелец аккаунта — он сам.
func Account(id uuid.UUID) Target { return Target{Kind: KindAccount, Owner: id} }

// AccountClass — цель-класс аккаунтов (create/list).
func AccountClass() Target { return Target{Kind: KindAccount} }

// Decision — исход проверки.
type Decision int

const (
	// Allow — действие разрешено.
	Allow Decision = iota
	// DenyUnauthenticated — актор не аутентифицирован; транспорт: 401.
	DenyUnauthenticated
	// DenyNotFound — отказ по владению, наружу отдаётся "не найдено";
	// транспорт: 404.
	DenyNotFound
	// DenyForbidden — отказ с подтверждением существования; транспорт: 403.
	DenyForbidden
)

// Authorize принимает решение для (актор, действие, цель).
// Анонимный актор передаётся как uuid.Nil.
func Authorize(actor uuid.UUID, action Action, target Target) Decision {
	// Единственная операция, доступная без аутентификации, — регистрация.
	if actor == uuid.Nil {
		if target.Kind == KindAccount && action == ActionCreate {
			return Allow
		}

		return DenyUnauthenticated
	}

	switch target.Kind {
	case KindMovie:
		switch action {
		case ActionCreate:
			// Владелец будет назначен из актора вызывающей стороной.
			return Allow
		case ActionList:
			// Выборка всегда предварительно ограничена owner == actor;
			// нефильтрованный список наружу не существует.
			return Allow
		case ActionRead, ActionUpdate, ActionDelete:
			if target.Owner == actor {
				return Allow
			}

			return DenyNotFound
		}

	case KindAccount:
		switch action {
		case ActionCreate:
			return Allow
		case ActionList:
			// Перечисление всех аккаунтов не является легитимной операцией
			// ни для какого актора.
			return DenyForbidden
		case ActionRead, ActionUpdate, ActionDelete:
			if target.Owner == actor {
				return Allow
			}

			return DenyNotFound
		}
	}

	return DenyForbidden
}

package database

type Database struct {
	store           *Store
	appRepo         *AppRepo
	categoryRepo    *CategoryRepo
	subcategoryRepo *SubcategoryRepo
	requisitionRepo *RequisitionRepo
	analyticsRepo   *AnalyticsRepo
	userRepo        *UserRepo
}

// New initializes a new Database struct with each repository sharing one store
func New(store *Store) Database {
	return Database{
		store:           store,
		appRepo:         NewAppRepo(store),
		categoryRepo:    NewCategoryRepo(store),
		subcategoryRepo: NewSubcategoryRepo(store),
		requisitionRepo: NewRequisitionRepo(store),
		analyticsRepo:   NewAnalyticsRepo(store),
		userRepo:        NewUserRepo(store),
	}
}

// Accessor methods for each repository

func (d Database) Store() *Store {
	return d.store
}

func (d Database) AppRepo() *AppRepo {
	return d.appRepo
}

func (d Database) CategoryRepo() *CategoryRepo {
	return d.categoryRepo
}

func (d Database) SubcategoryRepo() *SubcategoryRepo {
	return d.subcategoryRepo
}

func (d Database) RequisitionRepo() *RequisitionRepo {
	return d.requisitionRepo
}

func (d Database) AnalyticsRepo() *AnalyticsRepo {
	return d.analyticsRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}
